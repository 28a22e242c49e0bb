package generator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "gen.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func seedTask(t *testing.T, db *gorm.DB, title, status, due string) domain.Task {
	t.Helper()
	task := domain.Task{
		ID:      uuid.NewString(),
		Title:   title,
		Status:  status,
		DueDate: due,
	}
	if status == "done" {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func TestGenerate_Daily(t *testing.T) {
	db := newTestDB(t)
	g := NewMarkdownGenerator(db)

	task := seedTask(t, db, "Write report", "done", "2024-01-05")
	seedTask(t, db, "Out of window", "open", "2024-01-06")
	log := domain.TaskLog{ID: uuid.NewString(), TaskID: task.ID, Note: "drafted intro", LogDate: "2024-01-05"}
	if err := db.Create(&log).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	s := &domain.Summary{Type: domain.SummaryDaily, PeriodKey: "2024-01-05", Date: "2024-01-05"}
	c, err := g.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Title != "Daily Summary 2024-01-05" {
		t.Errorf("Title = %q", c.Title)
	}
	for _, want := range []string{"Tasks due: 1", "Tasks completed: 1", "Activity entries: 1", "[x] Write report", "drafted intro"} {
		if !strings.Contains(c.Body, want) {
			t.Errorf("body missing %q:\n%s", want, c.Body)
		}
	}
	if strings.Contains(c.Body, "Out of window") {
		t.Error("body includes a task outside the period")
	}
}

func TestGenerate_WeeklyMentionsAggregation(t *testing.T) {
	db := newTestDB(t)
	g := NewMarkdownGenerator(db)

	s := &domain.Summary{
		Type:              domain.SummaryWeekly,
		PeriodKey:         "2024-01-01",
		WeekStart:         "2024-01-01",
		WeekEnd:           "2024-01-07",
		RelatedSummaryIDs: domain.RelatedIDs{"a", "b", "c", "d", "e", "f", "g"},
	}
	c, err := g.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Title != "Weekly Summary 2024-01-01 – 2024-01-07" {
		t.Errorf("Title = %q", c.Title)
	}
	if !strings.Contains(c.Body, "Aggregated from 7 daily summaries.") {
		t.Errorf("body missing aggregation note:\n%s", c.Body)
	}
}

func TestGenerate_MonthlyWindowCoversWholeMonth(t *testing.T) {
	db := newTestDB(t)
	g := NewMarkdownGenerator(db)

	seedTask(t, db, "First of month", "open", "2024-02-01")
	seedTask(t, db, "Leap day", "open", "2024-02-29")
	seedTask(t, db, "March", "open", "2024-03-01")

	s := &domain.Summary{Type: domain.SummaryMonthly, PeriodKey: "2024-02", Month: "2024-02"}
	c, err := g.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(c.Body, "Tasks due: 2") {
		t.Errorf("leap-month window wrong:\n%s", c.Body)
	}
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	g := NewMarkdownGenerator(newTestDB(t))

	bad := []*domain.Summary{
		{Type: domain.SummaryDaily, Date: "not-a-date"},
		{Type: domain.SummaryWeekly, WeekStart: "2024-01-02", WeekEnd: "2024-01-08"},
		{Type: domain.SummaryMonthly, Month: "2024/02"},
		{Type: domain.SummaryType("hourly")},
	}
	for _, s := range bad {
		if _, err := g.Generate(context.Background(), s); !errors.Is(err, domain.ErrInvalidPeriod) {
			t.Errorf("summary %+v: want ErrInvalidPeriod, got %v", s, err)
		}
	}
}
