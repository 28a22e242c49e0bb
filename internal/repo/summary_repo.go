// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Summary model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Scheduling decisions (dependency gating,
// retry budgets) live in the services layer.
//
// Error semantics:
//   - When a summary is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSummary inserts a new Summary row. The caller supplies type, period
// fields, and related ids; the id is a generated UUID and CreatedAt is UTC.
// The (type, period_key) unique index rejects duplicate periods at the DB
// level as a backstop to the service-level lookup.
func CreateSummary(ctx context.Context, db *gorm.DB, s *domain.Summary) (*domain.Summary, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = domain.StatusNew
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSummary persists all mutated fields of an existing summary.
func SaveSummary(ctx context.Context, db *gorm.DB, s *domain.Summary) error {
	return db.WithContext(ctx).Save(s).Error
}

// GetSummary fetches a summary by id, or ErrNotFound if missing.
func GetSummary(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error) {
	var s domain.Summary
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByTypePeriod fetches the unique summary for a (type, period key) pair,
// or ErrNotFound if no summary exists for that period yet.
func FindByTypePeriod(ctx context.Context, db *gorm.DB, typ domain.SummaryType, periodKey string) (*domain.Summary, error) {
	var s domain.Summary
	err := db.WithContext(ctx).
		Where("type = ? AND period_key = ?", typ, periodKey).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByStatus returns all summaries in the given status, oldest first.
func ListByStatus(ctx context.Context, db *gorm.DB, status domain.SummaryStatus) ([]domain.Summary, error) {
	var out []domain.Summary
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// ListPending returns the processing queue, oldest first: every summary in
// status new, plus failed summaries that still have retry budget. Failed
// rows at or past maxRetries are permanently dead and never re-enter the
// queue. New rows are returned regardless of retry count so the queue pass
// can force stale ones to failed.
func ListPending(ctx context.Context, db *gorm.DB, maxRetries int) ([]domain.Summary, error) {
	var out []domain.Summary
	err := db.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry_count < ?)",
			domain.StatusNew, domain.StatusFailed, maxRetries).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// CountSummaries returns the total number of summaries matching the optional
// type and status filters (empty values mean "any").
func CountSummaries(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Summary{})
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListSummariesPage returns a page of summaries matching the optional type
// and status filters, ordered by period key descending (most recent period
// first). Use CountSummaries for pagination metadata.
func ListSummariesPage(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus, offset, limit int) ([]domain.Summary, error) {
	q := db.WithContext(ctx).Model(&domain.Summary{})
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Summary
	err := q.
		Order("period_key desc, type asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindByTypeAndDateRange returns summaries of the given tier whose period key
// falls in [startKey, endKey]. Period keys sort chronologically, so a string
// BETWEEN is a date-range query.
func FindByTypeAndDateRange(ctx context.Context, db *gorm.DB, typ domain.SummaryType, startKey, endKey string) ([]domain.Summary, error) {
	var out []domain.Summary
	err := db.WithContext(ctx).
		Where("type = ? AND period_key >= ? AND period_key <= ?", typ, startKey, endKey).
		Order("period_key asc").
		Find(&out).Error
	return out, err
}

// DailySummariesForWeek returns the daily summaries covering the span
// [weekStart, weekEnd], keyed by day. Absent days are simply missing from
// the map; the scheduler decides whether the week is complete.
func DailySummariesForWeek(ctx context.Context, db *gorm.DB, weekStart, weekEnd string) (map[string]domain.Summary, error) {
	var rows []domain.Summary
	err := db.WithContext(ctx).
		Where("type = ? AND date >= ? AND date <= ?", domain.SummaryDaily, weekStart, weekEnd).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Summary, len(rows))
	for _, s := range rows {
		out[s.Date] = s
	}
	return out, nil
}

// WeeklySummariesByWeekStarts returns the weekly summaries for the given
// week-start keys, keyed by week start. Absent weeks are missing from the map.
func WeeklySummariesByWeekStarts(ctx context.Context, db *gorm.DB, weekStarts []string) (map[string]domain.Summary, error) {
	if len(weekStarts) == 0 {
		return map[string]domain.Summary{}, nil
	}
	var rows []domain.Summary
	err := db.WithContext(ctx).
		Where("type = ? AND week_start IN ?", domain.SummaryWeekly, weekStarts).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Summary, len(rows))
	for _, s := range rows {
		out[s.WeekStart] = s
	}
	return out, nil
}

// DeleteSummary soft-deletes a summary by id. Missing rows yield ErrNotFound.
func DeleteSummary(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Summary{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
