// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the gap queries the scheduler uses to
// discover periods lacking a summary: the candidate periods are enumerated
// from the calendar and diffed against the period keys present in the table.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
)

// existingPeriodKeys returns the set of period keys of the given tier present
// in [startKey, endKey].
func existingPeriodKeys(ctx context.Context, db *gorm.DB, typ domain.SummaryType, startKey, endKey string) (map[string]struct{}, error) {
	var keys []string
	err := db.WithContext(ctx).
		Model(&domain.Summary{}).
		Where("type = ? AND period_key >= ? AND period_key <= ?", typ, startKey, endKey).
		Pluck("period_key", &keys).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out, nil
}

// missing filters candidates down to those absent from existing, preserving
// chronological order.
func missing(candidates []string, existing map[string]struct{}) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := existing[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// MissingDailyDates returns, in chronological order, every day in
// [start, end] that has no daily summary.
func MissingDailyDates(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	days := domain.DaysInRange(start, end)
	if len(days) == 0 {
		return nil, nil
	}
	existing, err := existingPeriodKeys(ctx, db, domain.SummaryDaily, days[0], days[len(days)-1])
	if err != nil {
		return nil, err
	}
	return missing(days, existing), nil
}

// MissingWeekStarts returns the week-start keys of every ISO week overlapping
// [start, end] that has no weekly summary.
func MissingWeekStarts(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	weeks := domain.WeekStartsInRange(start, end)
	if len(weeks) == 0 {
		return nil, nil
	}
	existing, err := existingPeriodKeys(ctx, db, domain.SummaryWeekly, weeks[0], weeks[len(weeks)-1])
	if err != nil {
		return nil, err
	}
	return missing(weeks, existing), nil
}

// MissingMonths returns the month keys of every calendar month overlapping
// [start, end] that has no monthly summary.
func MissingMonths(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	months := domain.MonthsInRange(start, end)
	if len(months) == 0 {
		return nil, nil
	}
	existing, err := existingPeriodKeys(ctx, db, domain.SummaryMonthly, months[0], months[len(months)-1])
	if err != nil {
		return nil, err
	}
	return missing(months, existing), nil
}
