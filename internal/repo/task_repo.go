// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the read-only task and task-log queries
// consumed by the content generator. Task CRUD itself lives outside the
// summary engine.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
)

// TasksDueInRange returns tasks whose due date falls in [startKey, endKey],
// ordered by due date then creation time.
func TasksDueInRange(ctx context.Context, db *gorm.DB, startKey, endKey string) ([]domain.Task, error) {
	var out []domain.Task
	err := db.WithContext(ctx).
		Where("due_date >= ? AND due_date <= ?", startKey, endKey).
		Order("due_date asc, created_at asc").
		Find(&out).Error
	return out, err
}

// CountTasksCompletedInRange returns the number of tasks completed within
// [start, end] (UTC midnight bounds, end exclusive of the following day).
func CountTasksCompletedInRange(ctx context.Context, db *gorm.DB, startKey, endKey string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("status = ? AND due_date >= ? AND due_date <= ?", "done", startKey, endKey).
		Count(&total).Error
	return total, err
}

// LogsInRange returns task logs whose log date falls in [startKey, endKey],
// ordered chronologically.
func LogsInRange(ctx context.Context, db *gorm.DB, startKey, endKey string) ([]domain.TaskLog, error) {
	var out []domain.TaskLog
	err := db.WithContext(ctx).
		Where("log_date >= ? AND log_date <= ?", startKey, endKey).
		Order("log_date asc, created_at asc").
		Find(&out).Error
	return out, err
}
