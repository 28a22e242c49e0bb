// Package services – SummaryService
//
// This file implements the SummaryService, which owns the two single-summary
// operations of the engine: the idempotent Create (one summary per tier and
// period, duplicates return the existing id untouched) and Process (drive one
// summary through its lifecycle by invoking the content-generation
// collaborator and recording the outcome against the retry budget).
//
// Service-level errors (e.g., ErrSummaryNotFound, ErrProcessingFailed) are
// returned for predictable cases so the scheduler, the processing loop, and
// HTTP handlers can branch on them consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/generator"
	"github.com/tbourn/go-task-backend/internal/repo"
)

// SummaryStore defines the repository contract required by the engine.
// Implementations are responsible for persistence of summary aggregates.
type SummaryStore interface {
	// Create inserts a new summary row.
	Create(ctx context.Context, db *gorm.DB, s *domain.Summary) (*domain.Summary, error)

	// Save persists all mutated fields of an existing summary.
	Save(ctx context.Context, db *gorm.DB, s *domain.Summary) error

	// Get fetches a summary by id.
	Get(ctx context.Context, db *gorm.DB, id string) (*domain.Summary, error)

	// Delete soft-deletes a summary by id.
	Delete(ctx context.Context, db *gorm.DB, id string) error

	// FindByTypePeriod fetches the unique summary for a (type, period key) pair.
	FindByTypePeriod(ctx context.Context, db *gorm.DB, typ domain.SummaryType, periodKey string) (*domain.Summary, error)

	// ListPending returns the processing queue oldest first: new summaries
	// plus failed ones still below the retry budget.
	ListPending(ctx context.Context, db *gorm.DB, maxRetries int) ([]domain.Summary, error)

	// ListByStatus returns all summaries in the given status, oldest first.
	ListByStatus(ctx context.Context, db *gorm.DB, status domain.SummaryStatus) ([]domain.Summary, error)

	// Count returns the number of summaries matching the optional filters.
	Count(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus) (int64, error)

	// ListPage returns a page of summaries matching the optional filters.
	ListPage(ctx context.Context, db *gorm.DB, typ domain.SummaryType, status domain.SummaryStatus, offset, limit int) ([]domain.Summary, error)

	// Stats returns aggregate counts over all summaries.
	Stats(ctx context.Context, db *gorm.DB) (*repo.SummaryStats, error)

	// MissingDailyDates returns days in [start, end] lacking a daily summary.
	MissingDailyDates(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error)

	// MissingWeekStarts returns week starts overlapping [start, end] lacking a weekly summary.
	MissingWeekStarts(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error)

	// MissingMonths returns months overlapping [start, end] lacking a monthly summary.
	MissingMonths(ctx context.Context, db *gorm.DB, start, end time.Time) ([]string, error)

	// DailySummariesForWeek returns daily summaries in [weekStart, weekEnd], keyed by day.
	DailySummariesForWeek(ctx context.Context, db *gorm.DB, weekStart, weekEnd string) (map[string]domain.Summary, error)

	// WeeklySummariesByWeekStarts returns weekly summaries for the given week starts, keyed by week start.
	WeeklySummariesByWeekStarts(ctx context.Context, db *gorm.DB, weekStarts []string) (map[string]domain.Summary, error)
}

// SummaryService provides the create and process operations on single
// summaries. It enforces period validation and the lifecycle state machine;
// discovery of which summaries to create or process belongs to Scheduler and
// Processor.
type SummaryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the summary repository used by this service.
	Repo SummaryStore
	// Gen produces the report content for one summary.
	Gen generator.Generator
	// MaxRetries caps automatic retry attempts per summary.
	MaxRetries int
	// Log receives per-operation diagnostics.
	Log zerolog.Logger
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(db *gorm.DB, r SummaryStore, gen generator.Generator, maxRetries int, log zerolog.Logger) *SummaryService {
	return &SummaryService{DB: db, Repo: r, Gen: gen, MaxRetries: maxRetries, Log: log}
}

// CreateInput carries the period identity for a new summary. Exactly the
// fields matching Type must be populated.
type CreateInput struct {
	Type      domain.SummaryType
	Date      string // daily
	WeekStart string // weekly
	WeekEnd   string // weekly
	Month     string // monthly
	// RelatedIDs are the child-tier summary ids the new summary aggregates.
	RelatedIDs []string
}

// periodKey validates the input and derives the canonical period key.
func (in CreateInput) periodKey() (string, error) {
	switch in.Type {
	case domain.SummaryDaily:
		if _, err := domain.ParseDay(in.Date); err != nil {
			return "", err
		}
		return in.Date, nil
	case domain.SummaryWeekly:
		if err := domain.ValidateWeek(in.WeekStart, in.WeekEnd); err != nil {
			return "", err
		}
		return in.WeekStart, nil
	case domain.SummaryMonthly:
		if _, err := domain.ParseMonth(in.Month); err != nil {
			return "", err
		}
		return in.Month, nil
	default:
		return "", fmt.Errorf("%w: unknown summary type %q", domain.ErrInvalidPeriod, in.Type)
	}
}

// Create idempotently materializes the summary for in's (type, period). When
// a summary for that period already exists its id is returned unchanged and
// created is false; otherwise a new summary is persisted with status new and
// a zero retry count.
func (s *SummaryService) Create(ctx context.Context, in CreateInput) (id string, created bool, err error) {
	key, err := in.periodKey()
	if err != nil {
		return "", false, err
	}

	existing, err := s.Repo.FindByTypePeriod(ctx, s.DB, in.Type, key)
	switch {
	case err == nil:
		return existing.ID, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to insert
	default:
		return "", false, fmt.Errorf("%w: lookup %s %s: %w", ErrPersistence, in.Type, key, err)
	}

	sum := &domain.Summary{
		Type:              in.Type,
		PeriodKey:         key,
		Date:              in.Date,
		WeekStart:         in.WeekStart,
		WeekEnd:           in.WeekEnd,
		Month:             in.Month,
		Status:            domain.StatusNew,
		RelatedSummaryIDs: domain.RelatedIDs(in.RelatedIDs),
	}
	if _, err := s.Repo.Create(ctx, s.DB, sum); err != nil {
		return "", false, fmt.Errorf("%w: create %s %s: %w", ErrPersistence, in.Type, key, err)
	}
	return sum.ID, true, nil
}

// Process drives one summary through a single processing attempt: it marks
// the summary processing, invokes the content generator, and records the
// outcome. On generation failure the summary is re-fetched and its retry
// transition applied (back to new, or failed once the budget is reached),
// and ErrProcessingFailed is returned.
//
// Processing an already-done summary is a no-op. A summary mid-flight yields
// ErrAlreadyProcessing; a summary past its budget yields
// ErrRetryBudgetExceeded without invoking the generator.
func (s *SummaryService) Process(ctx context.Context, id string) error {
	sum, err := s.Repo.Get(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryNotFound
		}
		return fmt.Errorf("%w: load summary %s: %w", ErrPersistence, id, err)
	}

	if sum.Status == domain.StatusDone {
		return nil
	}
	if sum.Status == domain.StatusProcessing {
		return ErrAlreadyProcessing
	}
	if !sum.BeginProcessing(s.MaxRetries) {
		return ErrRetryBudgetExceeded
	}
	if err := s.Repo.Save(ctx, s.DB, sum); err != nil {
		return fmt.Errorf("%w: mark processing %s: %w", ErrPersistence, id, err)
	}

	content, genErr := s.Gen.Generate(ctx, sum)
	if genErr != nil {
		return s.recordFailure(ctx, id, genErr)
	}

	sum.MarkDone(content.Title, content.Body)
	if err := s.Repo.Save(ctx, s.DB, sum); err != nil {
		return fmt.Errorf("%w: mark done %s: %w", ErrPersistence, id, err)
	}
	s.Log.Debug().Str("summary_id", id).Str("period", sum.PeriodKey).Msg("summary processed")
	return nil
}

// recordFailure re-fetches the summary and applies the retry transition, so
// the bookkeeping survives even if the in-memory copy is stale.
func (s *SummaryService) recordFailure(ctx context.Context, id string, genErr error) error {
	fresh, err := s.Repo.Get(ctx, s.DB, id)
	if err != nil {
		return fmt.Errorf("%w: reload failed summary %s: %w", ErrPersistence, id, err)
	}
	fresh.MarkFailedAttempt(s.MaxRetries)
	if err := s.Repo.Save(ctx, s.DB, fresh); err != nil {
		return fmt.Errorf("%w: record failed attempt %s: %w", ErrPersistence, id, err)
	}
	s.Log.Warn().
		Str("summary_id", id).
		Int("retry_count", fresh.RetryCount).
		Str("status", string(fresh.Status)).
		Err(genErr).
		Msg("content generation failed")
	return fmt.Errorf("%w: %w", ErrProcessingFailed, genErr)
}

// Get returns one summary by id.
func (s *SummaryService) Get(ctx context.Context, id string) (*domain.Summary, error) {
	sum, err := s.Repo.Get(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return sum, nil
}

// ListPage returns a page of summaries matching the optional type and status
// filters plus the total count. Defaults are applied for invalid page and
// pageSize values.
func (s *SummaryService) ListPage(ctx context.Context, typ domain.SummaryType, status domain.SummaryStatus, page, pageSize int) ([]domain.Summary, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.Count(ctx, s.DB, typ, status)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if total == 0 {
		return []domain.Summary{}, 0, nil
	}

	items, err := s.Repo.ListPage(ctx, s.DB, typ, status, offset, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return items, total, nil
}

// Stats returns the aggregate overview counts.
func (s *SummaryService) Stats(ctx context.Context) (*repo.SummaryStats, error) {
	stats, err := s.Repo.Stats(ctx, s.DB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return stats, nil
}

// Delete removes a summary (administrative, soft delete).
func (s *SummaryService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryNotFound
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
