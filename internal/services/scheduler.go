// Package services – Scheduler
//
// The scheduler performs the gap-filling pass: it walks a lookback window
// ending at "now", finds every daily date, week, and month that has no
// summary yet, and materializes the missing ones bottom-up. Higher tiers are
// strictly gated on the completeness of the tier below: a weekly summary is
// only created once all seven of its daily summaries exist and are done, and
// a monthly summary only once every ISO week overlapping the month has a
// done weekly summary. Periods that fail the gate are skipped silently and
// reconsidered on the next pass.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/events"
	"github.com/tbourn/go-task-backend/internal/observability"
)

// DefaultLookbackDays is the schedule window when none is configured.
const DefaultLookbackDays = 90

// ScheduleResult reports how many summaries one pass created per tier.
type ScheduleResult struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

// Total is the number of summaries the pass created across all tiers.
func (r ScheduleResult) Total() int { return r.Daily + r.Weekly + r.Monthly }

// Scheduler creates missing summaries over a rolling lookback window.
type Scheduler struct {
	// DB is the GORM handle used for gap queries.
	DB *gorm.DB
	// Repo answers the gap and completeness queries.
	Repo SummaryStore
	// Svc performs the idempotent per-period creation.
	Svc *SummaryService
	// Pub receives one event per created summary.
	Pub events.Publisher
	// LookbackDays bounds how far back the window reaches. Zero or negative
	// falls back to DefaultLookbackDays.
	LookbackDays int
	// Log receives per-pass diagnostics.
	Log zerolog.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(db *gorm.DB, r SummaryStore, svc *SummaryService, pub events.Publisher, lookbackDays int, log zerolog.Logger) *Scheduler {
	return &Scheduler{DB: db, Repo: r, Svc: svc, Pub: pub, LookbackDays: lookbackDays, Log: log}
}

// Schedule runs one gap-filling pass over [upTo - lookback, upTo]. The three
// tiers run in order so that a pass can only ever create summaries whose
// children already exist; it never creates a higher-tier summary in the same
// pass that would satisfy its own gate.
//
// Errors from the gap queries abort the pass. Failures creating an
// individual summary are logged and skipped so one bad period cannot starve
// the rest of the window.
func (s *Scheduler) Schedule(ctx context.Context, upTo time.Time) (ScheduleResult, error) {
	lookback := s.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	end := domain.DayFloor(upTo)
	start := end.AddDate(0, 0, -lookback)

	ctx, span := observability.Tracer().Start(ctx, "scheduler.schedule")
	defer span.End()

	var res ScheduleResult
	var err error

	if res.Daily, err = s.scheduleDaily(ctx, start, end); err != nil {
		return res, err
	}
	if res.Weekly, err = s.scheduleWeekly(ctx, start, end); err != nil {
		return res, err
	}
	if res.Monthly, err = s.scheduleMonthly(ctx, start, end); err != nil {
		return res, err
	}

	span.SetAttributes(
		attribute.Int("summaries.daily", res.Daily),
		attribute.Int("summaries.weekly", res.Weekly),
		attribute.Int("summaries.monthly", res.Monthly),
	)
	s.Log.Info().
		Str("window_start", domain.DayKey(start)).
		Str("window_end", domain.DayKey(end)).
		Int("daily", res.Daily).
		Int("weekly", res.Weekly).
		Int("monthly", res.Monthly).
		Msg("schedule pass complete")
	return res, nil
}

// scheduleDaily creates a daily summary for every date in the window that
// lacks one. Daily summaries have no completeness gate.
func (s *Scheduler) scheduleDaily(ctx context.Context, start, end time.Time) (int, error) {
	missing, err := s.Repo.MissingDailyDates(ctx, s.DB, start, end)
	if err != nil {
		return 0, fmt.Errorf("daily gap query: %w", err)
	}

	created := 0
	for _, day := range missing {
		id, fresh, err := s.Svc.Create(ctx, CreateInput{Type: domain.SummaryDaily, Date: day})
		if err != nil {
			s.Log.Error().Err(err).Str("date", day).Msg("schedule daily summary")
			continue
		}
		if !fresh {
			continue
		}
		created++
		s.Pub.Publish(events.Event{
			Type:      events.TypeDailyDataCollectionRequested,
			SummaryID: id,
			PeriodKey: day,
		})
	}
	return created, nil
}

// scheduleWeekly creates a weekly summary for every missing week whose seven
// daily summaries all exist and are done.
func (s *Scheduler) scheduleWeekly(ctx context.Context, start, end time.Time) (int, error) {
	missing, err := s.Repo.MissingWeekStarts(ctx, s.DB, start, end)
	if err != nil {
		return 0, fmt.Errorf("weekly gap query: %w", err)
	}

	created := 0
	for _, weekStart := range missing {
		days, err := domain.DaysInWeek(weekStart)
		if err != nil {
			s.Log.Error().Err(err).Str("week_start", weekStart).Msg("schedule weekly summary")
			continue
		}
		weekEnd := days[len(days)-1]

		dailies, err := s.Repo.DailySummariesForWeek(ctx, s.DB, weekStart, weekEnd)
		if err != nil {
			return created, fmt.Errorf("weekly completeness query %s: %w", weekStart, err)
		}

		related, complete := collectDone(days, dailies)
		if !complete {
			continue
		}

		id, fresh, err := s.Svc.Create(ctx, CreateInput{
			Type:       domain.SummaryWeekly,
			WeekStart:  weekStart,
			WeekEnd:    weekEnd,
			RelatedIDs: related,
		})
		if err != nil {
			s.Log.Error().Err(err).Str("week_start", weekStart).Msg("schedule weekly summary")
			continue
		}
		if !fresh {
			continue
		}
		created++
		s.Pub.Publish(events.Event{
			Type:      events.TypeWeeklySummarizationRequested,
			SummaryID: id,
			PeriodKey: weekStart,
		})
	}
	return created, nil
}

// scheduleMonthly creates a monthly summary for every missing month whose
// overlapping weeks all have a done weekly summary.
func (s *Scheduler) scheduleMonthly(ctx context.Context, start, end time.Time) (int, error) {
	missing, err := s.Repo.MissingMonths(ctx, s.DB, start, end)
	if err != nil {
		return 0, fmt.Errorf("monthly gap query: %w", err)
	}

	created := 0
	for _, month := range missing {
		weekStarts, err := domain.WeeksOverlappingMonth(month)
		if err != nil {
			s.Log.Error().Err(err).Str("month", month).Msg("schedule monthly summary")
			continue
		}

		weeklies, err := s.Repo.WeeklySummariesByWeekStarts(ctx, s.DB, weekStarts)
		if err != nil {
			return created, fmt.Errorf("monthly completeness query %s: %w", month, err)
		}

		related, complete := collectDone(weekStarts, weeklies)
		if !complete {
			continue
		}

		id, fresh, err := s.Svc.Create(ctx, CreateInput{
			Type:       domain.SummaryMonthly,
			Month:      month,
			RelatedIDs: related,
		})
		if err != nil {
			s.Log.Error().Err(err).Str("month", month).Msg("schedule monthly summary")
			continue
		}
		if !fresh {
			continue
		}
		created++
		s.Pub.Publish(events.Event{
			Type:      events.TypeMonthlySummarizationRequested,
			SummaryID: id,
			PeriodKey: month,
		})
	}
	return created, nil
}

// collectDone checks that every key in keys is present in byKey with status
// done, and returns the child summary ids in key order.
func collectDone(keys []string, byKey map[string]domain.Summary) ([]string, bool) {
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		child, ok := byKey[k]
		if !ok || child.Status != domain.StatusDone {
			return nil, false
		}
		ids = append(ids, child.ID)
	}
	return ids, true
}
