package repo

import (
	"context"
	"testing"

	"github.com/tbourn/go-task-backend/internal/domain"
)

func TestGetSummaryStats_Empty(t *testing.T) {
	db := newTestDB(t)

	stats, err := GetSummaryStats(context.Background(), db)
	if err != nil {
		t.Fatalf("GetSummaryStats: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
	if stats.LastUpdated != nil {
		t.Errorf("LastUpdated = %v, want nil", stats.LastUpdated)
	}
}

func TestGetSummaryStats_Breakdowns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreate(t, db, dailySummary("2024-01-01", domain.StatusDone))
	mustCreate(t, db, dailySummary("2024-01-02", domain.StatusDone))
	mustCreate(t, db, dailySummary("2024-01-03", domain.StatusFailed))
	w := &domain.Summary{Type: domain.SummaryWeekly, PeriodKey: "2024-01-01", WeekStart: "2024-01-01", WeekEnd: "2024-01-07", Status: domain.StatusNew}
	mustCreate(t, db, w)

	stats, err := GetSummaryStats(ctx, db)
	if err != nil {
		t.Fatalf("GetSummaryStats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.ByStatus["done"] != 2 || stats.ByStatus["failed"] != 1 || stats.ByStatus["new"] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.ByType["daily"] != 3 || stats.ByType["weekly"] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
	if stats.LastUpdated == nil {
		t.Error("LastUpdated should be set")
	}
}
