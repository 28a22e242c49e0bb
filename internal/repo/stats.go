// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate statistics query backing
// the overview endpoint. Each function is context-aware and safe to call
// from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
)

// SummaryStats holds aggregate counts over the summaries table, broken down
// by lifecycle state and by tier.
type SummaryStats struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByType      map[string]int64 `json:"by_type"`
	LastUpdated *time.Time       `json:"last_updated,omitempty"`
}

// GetSummaryStats returns aggregate metadata for all summaries: totals per
// status and per tier, plus the greatest UpdatedAt among all rows (nil when
// the table is empty).
func GetSummaryStats(ctx context.Context, db *gorm.DB) (*SummaryStats, error) {
	stats := &SummaryStats{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	q := db.WithContext(ctx).Model(&domain.Summary{})
	if err := q.Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if stats.Total == 0 {
		return stats, nil
	}

	var byStatus []struct {
		Status string
		N      int64
	}
	if err := db.WithContext(ctx).Model(&domain.Summary{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.N
	}

	var byType []struct {
		Type string
		N    int64
	}
	if err := db.WithContext(ctx).Model(&domain.Summary{}).
		Select("type, COUNT(*) AS n").
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ByType[row.Type] = row.N
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err := db.WithContext(ctx).Model(&domain.Summary{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return nil, err
	}
	stats.LastUpdated = &row.UpdatedAt

	return stats, nil
}
