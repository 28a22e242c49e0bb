package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/events"
	"github.com/tbourn/go-task-backend/internal/repo"
)

// capturePublisher records every published event in order.
type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) { p.events = append(p.events, e) }

func (p *capturePublisher) byType(typ string) []events.Event {
	var out []events.Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func newSchedulerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "scheduler_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB, *capturePublisher) {
	t.Helper()
	db := newSchedulerTestDB(t)
	store := repo.Store{}
	svc := NewSummaryService(db, store, &fakeGenerator{}, 3, zerolog.Nop())
	pub := &capturePublisher{}
	sched := NewScheduler(db, store, svc, pub, 6, zerolog.Nop())
	return sched, db, pub
}

// seedDone inserts a summary directly in status done.
func seedDone(t *testing.T, db *gorm.DB, s *domain.Summary) *domain.Summary {
	t.Helper()
	s.Status = domain.StatusDone
	s.Title = "t"
	s.Content = "c"
	out, err := repo.CreateSummary(context.Background(), db, s)
	if err != nil {
		t.Fatalf("seed summary %s %s: %v", s.Type, s.PeriodKey, err)
	}
	return out
}

func mondayUTC(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(day)
	if err != nil {
		t.Fatalf("parse %s: %v", day, err)
	}
	return d
}

func TestSchedule_CreatesMissingDailies(t *testing.T) {
	sched, db, pub := newTestScheduler(t)
	ctx := context.Background()

	// Window 2024-02-05 .. 2024-02-11 (lookback 6 from Sunday).
	res, err := sched.Schedule(ctx, mondayUTC(t, "2024-02-11"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Daily != 7 {
		t.Fatalf("daily created = %d, want 7", res.Daily)
	}
	// No daily is done yet, so the upper tiers must stay empty.
	if res.Weekly != 0 || res.Monthly != 0 {
		t.Fatalf("weekly = %d monthly = %d, want 0 and 0", res.Weekly, res.Monthly)
	}

	got := pub.byType(events.TypeDailyDataCollectionRequested)
	if len(got) != 7 {
		t.Fatalf("daily events = %d, want 7", len(got))
	}
	if got[0].PeriodKey != "2024-02-05" || got[6].PeriodKey != "2024-02-11" {
		t.Fatalf("daily event range = %s .. %s", got[0].PeriodKey, got[6].PeriodKey)
	}

	// Re-running the same window creates nothing new.
	res, err = sched.Schedule(ctx, mondayUTC(t, "2024-02-11"))
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if res.Total() != 0 {
		t.Fatalf("second pass created %d summaries, want 0", res.Total())
	}

	count, err := repo.CountSummaries(ctx, db, domain.SummaryDaily, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("stored dailies = %d, want 7", count)
	}
}

func TestSchedule_WeeklyGatedOnAllSevenDailiesDone(t *testing.T) {
	sched, db, pub := newTestScheduler(t)
	ctx := context.Background()

	days, err := domain.DaysInWeek("2024-02-05")
	if err != nil {
		t.Fatal(err)
	}

	// Six of seven done: the week must be skipped.
	var childIDs []string
	for _, day := range days[:6] {
		s := seedDone(t, db, &domain.Summary{Type: domain.SummaryDaily, PeriodKey: day, Date: day})
		childIDs = append(childIDs, s.ID)
	}
	res, err := sched.Schedule(ctx, mondayUTC(t, "2024-02-11"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Weekly != 0 {
		t.Fatalf("weekly created with incomplete week: %d", res.Weekly)
	}
	// The pass backfills the one missing daily.
	if res.Daily != 1 {
		t.Fatalf("daily created = %d, want 1", res.Daily)
	}

	// Complete the seventh; next pass creates the weekly.
	last, err := repo.FindByTypePeriod(ctx, db, domain.SummaryDaily, days[6])
	if err != nil {
		t.Fatalf("find backfilled daily: %v", err)
	}
	last.MarkDone("t", "c")
	if err := repo.SaveSummary(ctx, db, last); err != nil {
		t.Fatalf("complete daily: %v", err)
	}
	childIDs = append(childIDs, last.ID)

	res, err = sched.Schedule(ctx, mondayUTC(t, "2024-02-11"))
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if res.Weekly != 1 {
		t.Fatalf("weekly created = %d, want 1", res.Weekly)
	}

	weekly, err := repo.FindByTypePeriod(ctx, db, domain.SummaryWeekly, "2024-02-05")
	if err != nil {
		t.Fatalf("find weekly: %v", err)
	}
	if weekly.WeekStart != "2024-02-05" || weekly.WeekEnd != "2024-02-11" {
		t.Fatalf("weekly span = %s .. %s", weekly.WeekStart, weekly.WeekEnd)
	}
	if len(weekly.RelatedSummaryIDs) != 7 {
		t.Fatalf("related ids = %d, want 7", len(weekly.RelatedSummaryIDs))
	}
	for _, id := range childIDs {
		if !weekly.RelatedSummaryIDs.Contains(id) {
			t.Fatalf("weekly missing related id %s", id)
		}
	}

	if got := pub.byType(events.TypeWeeklySummarizationRequested); len(got) != 1 || got[0].PeriodKey != "2024-02-05" {
		t.Fatalf("weekly events = %+v", got)
	}
}

func TestSchedule_MonthlyGatedOnAllOverlappingWeeksDone(t *testing.T) {
	sched, db, pub := newTestScheduler(t)
	sched.LookbackDays = 45
	ctx := context.Background()

	weeks, err := domain.WeeksOverlappingMonth("2024-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 5 || weeks[0] != "2024-01-29" || weeks[4] != "2024-02-26" {
		t.Fatalf("unexpected overlapping weeks for 2024-02: %v", weeks)
	}

	// Seed every daily in the window done so the pass does not create gaps
	// that distract from the monthly gate, then all but the last weekly.
	upTo := mondayUTC(t, "2024-03-03")
	for _, day := range domain.DaysInRange(upTo.AddDate(0, 0, -45), upTo) {
		seedDone(t, db, &domain.Summary{Type: domain.SummaryDaily, PeriodKey: day, Date: day})
	}
	for _, ws := range weeks[:4] {
		we := domain.DayKey(domain.WeekEndOf(mondayUTC(t, ws)))
		seedDone(t, db, &domain.Summary{Type: domain.SummaryWeekly, PeriodKey: ws, WeekStart: ws, WeekEnd: we})
	}

	res, err := sched.Schedule(ctx, upTo)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Monthly != 0 {
		t.Fatalf("monthly created with incomplete weeks: %d", res.Monthly)
	}

	// The pass itself created the missing weeklies (all dailies are done),
	// but they are not done yet, so the month still waits.
	created, err := repo.FindByTypePeriod(ctx, db, domain.SummaryWeekly, weeks[4])
	if err != nil {
		t.Fatalf("find scheduled weekly: %v", err)
	}
	if created.Status != domain.StatusNew {
		t.Fatalf("scheduled weekly status = %s, want new", created.Status)
	}

	created.MarkDone("t", "c")
	if err := repo.SaveSummary(ctx, db, created); err != nil {
		t.Fatalf("complete weekly: %v", err)
	}

	res, err = sched.Schedule(ctx, upTo)
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if res.Monthly == 0 {
		t.Fatal("expected at least the February monthly to be created")
	}

	monthly, err := repo.FindByTypePeriod(ctx, db, domain.SummaryMonthly, "2024-02")
	if err != nil {
		t.Fatalf("find monthly: %v", err)
	}
	if monthly.Month != "2024-02" {
		t.Fatalf("month = %s", monthly.Month)
	}
	if len(monthly.RelatedSummaryIDs) != 5 {
		t.Fatalf("related ids = %d, want 5", len(monthly.RelatedSummaryIDs))
	}

	found := false
	for _, e := range pub.byType(events.TypeMonthlySummarizationRequested) {
		if e.PeriodKey == "2024-02" {
			found = true
		}
	}
	if !found {
		t.Fatal("no monthly event for 2024-02")
	}
}

func TestSchedule_DefaultLookback(t *testing.T) {
	sched, _, _ := newTestScheduler(t)
	sched.LookbackDays = 0
	ctx := context.Background()

	res, err := sched.Schedule(ctx, mondayUTC(t, "2024-02-11"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if res.Daily != DefaultLookbackDays+1 {
		t.Fatalf("daily created = %d, want %d", res.Daily, DefaultLookbackDays+1)
	}
}
