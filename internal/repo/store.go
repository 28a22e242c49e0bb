package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
)

// Store adapts the package-level repository functions to the method-based
// contracts the service layer consumes. It is stateless; the *gorm.DB flows
// through every call.
type Store struct{}

func (Store) Create(ctx context.Context, db *gorm.DB, s *domain.Summary) (*domain.Summary, error) {
	return CreateSummary(ctx, db, s)
}

func (Store) Save(ctx context.Context, db *gorm.DB, s *domain.Summary) error {
	return SaveSummary(ctx, db, s)
}

func (Store) Get(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error) {
	return GetSummary(ctx, db, id)
}

func (Store) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return DeleteSummary(ctx, db, id)
}

func (Store) FindByTypePeriod(ctx context.Context, db *gorm.DB, typ domain.SummaryType, periodKey string) (*domain.Summary, error) {
	return FindByTypePeriod(ctx, db, typ, periodKey)
}

func (Store) ListPending(ctx context.Context, db *gorm.DB, maxRetries int) ([]domain.Summary, error) {
	return ListPending(ctx, db, maxRetries)
}

func (Store) ListByStatus(ctx context.Context, db *gorm.DB, status domain.SummaryStatus) ([]domain.Summary, error) {
	return ListByStatus(ctx, db, status)
}

func (Store) Count(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus) (int64, error) {
	return CountSummaries(ctx, db, typ, status)
}

func (Store) ListPage(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus, offset, limit int) ([]domain.Summary, error) {
	return ListSummariesPage(ctx, db, typ, status, offset, limit)
}

func (Store) Stats(ctx context.Context, db *gorm.DB) (*SummaryStats, error) {
	return GetSummaryStats(ctx, db)
}

func (Store) MissingDailyDates(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	return MissingDailyDates(ctx, db, start, end)
}

func (Store) MissingWeekStarts(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	return MissingWeekStarts(ctx, db, start, end)
}

func (Store) MissingMonths(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error) {
	return MissingMonths(ctx, db, start, end)
}

func (Store) DailySummariesForWeek(ctx context.Context, db *gorm.DB, weekStart, weekEnd string) (map[string]domain.Summary, error) {
	return DailySummariesForWeek(ctx, db, weekStart, weekEnd)
}

func (Store) WeeklySummariesByWeekStarts(ctx context.Context, db *gorm.DB, weekStarts []string) (map[string]domain.Summary, error) {
	return WeeklySummariesByWeekStarts(ctx, db, weekStarts)
}
