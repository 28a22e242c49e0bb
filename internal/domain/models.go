// Package domain defines the persistence models for summaries, tasks, and
// task logs. These types are mapped with GORM and form the core data layer
// of the task-backend application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Summary represents one periodic aggregate report over task activity.
// A summary belongs to exactly one tier (daily, weekly, or monthly) and to
// exactly one period of that tier; the (type, period_key) pair is unique.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Type: tier of the summary (daily|weekly|monthly), immutable after create.
//   - PeriodKey: canonical period identifier matching Type; the day
//     ("2006-01-02") for daily, the week-start Monday ("2006-01-02") for
//     weekly, the month ("2006-01") for monthly. Unique together with Type.
//   - Date: calendar day covered by a daily summary (empty otherwise).
//   - WeekStart / WeekEnd: Monday-anchored 7-day span of a weekly summary.
//   - Month: year-month of a monthly summary.
//   - Status: lifecycle state (new|processing|done|failed).
//   - RetryCount: number of failed processing attempts so far.
//   - RelatedSummaryIDs: ordered ids of the child-tier summaries this summary
//     aggregates (daily ids for weekly, weekly ids for monthly), stored JSON.
//   - Title / Content: generated report text (populated once processed).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (administrative delete only).
type Summary struct {
	ID         string        `json:"id"          gorm:"type:char(36);primaryKey"`
	Type       SummaryType   `json:"type"        gorm:"type:varchar(16);not null;index;uniqueIndex:ux_summary_type_period,priority:1"`
	PeriodKey  string        `json:"period_key"  gorm:"type:varchar(10);not null;uniqueIndex:ux_summary_type_period,priority:2"`
	Date       string        `json:"date,omitempty"       gorm:"type:varchar(10);index"`
	WeekStart  string        `json:"week_start,omitempty" gorm:"type:varchar(10);index"`
	WeekEnd    string        `json:"week_end,omitempty"   gorm:"type:varchar(10)"`
	Month      string        `json:"month,omitempty"      gorm:"type:varchar(7);index"`
	Status     SummaryStatus `json:"status"      gorm:"type:varchar(16);not null;index;default:'new'"`
	RetryCount int           `json:"retry_count" gorm:"not null;default:0"`

	RelatedSummaryIDs RelatedIDs `json:"related_summary_ids" gorm:"type:text;serializer:json"`

	Title   string `json:"title,omitempty"   gorm:"type:varchar(255)"`
	Content string `json:"content,omitempty" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Summary.
func (Summary) TableName() string { return "summaries" }

// RelatedIDs is the ordered set of child summary ids aggregated by a parent
// summary. It is persisted as a JSON array via the GORM json serializer.
type RelatedIDs []string

// Contains reports whether id is present in the set.
func (r RelatedIDs) Contains(id string) bool {
	for _, v := range r {
		if v == id {
			return true
		}
	}
	return false
}

// Task represents a single to-do item owned by the user. The summary engine
// only reads tasks; task CRUD is handled elsewhere.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Title: short task description.
//   - Status: open|done (enforced by DB constraint).
//   - DueDate: optional calendar day ("2006-01-02") the task is planned for.
//   - CompletedAt: set when the task transitions to done.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Task struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title"        gorm:"type:varchar(255);not null"`
	Status      string         `json:"status"       gorm:"type:varchar(16);not null;check:status IN ('open','done');index"`
	DueDate     string         `json:"due_date,omitempty" gorm:"type:varchar(10);index"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Task.
func (Task) TableName() string { return "tasks" }

// TaskLog is a free-form activity note attached to a task on a given day.
// Logs are the raw material daily summaries aggregate.
type TaskLog struct {
	ID        string         `json:"id"      gorm:"type:char(36);primaryKey"`
	TaskID    string         `json:"task_id" gorm:"type:char(36);not null;index:idx_task_logs,priority:1"`
	Note      string         `json:"note"    gorm:"type:text;not null"`
	LogDate   string         `json:"log_date" gorm:"type:varchar(10);not null;index:idx_task_logs,priority:2"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"       gorm:"index"`

	// Task is the parent item. Logs are cascade-deleted if their task is removed.
	Task Task `json:"-" gorm:"foreignKey:TaskID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TaskLog.
func (TaskLog) TableName() string { return "task_logs" }
