package domain

import "testing"

func newSummary(status SummaryStatus, retries int) *Summary {
	return &Summary{
		ID:         "s1",
		Type:       SummaryDaily,
		PeriodKey:  "2024-01-01",
		Date:       "2024-01-01",
		Status:     status,
		RetryCount: retries,
	}
}

func TestBeginProcessing(t *testing.T) {
	s := newSummary(StatusNew, 0)
	if !s.BeginProcessing(3) {
		t.Fatal("new summary must be processable")
	}
	if s.Status != StatusProcessing {
		t.Fatalf("status = %s, want processing", s.Status)
	}

	// Retryable failed is equivalent to new.
	s = newSummary(StatusFailed, 2)
	if !s.BeginProcessing(3) {
		t.Fatal("failed summary below budget must be processable")
	}

	for _, tc := range []struct {
		name string
		s    *Summary
	}{
		{"done", newSummary(StatusDone, 0)},
		{"processing", newSummary(StatusProcessing, 0)},
		{"failed at budget", newSummary(StatusFailed, 3)},
	} {
		if tc.s.BeginProcessing(3) {
			t.Errorf("%s summary must not be processable", tc.name)
		}
	}
}

func TestMarkFailedAttempt_StaysNewBelowBudget(t *testing.T) {
	s := newSummary(StatusProcessing, 0)
	s.MarkFailedAttempt(3)
	if s.Status != StatusNew || s.RetryCount != 1 {
		t.Fatalf("got status=%s retries=%d, want new/1", s.Status, s.RetryCount)
	}
}

func TestMarkFailedAttempt_FailsAtBudget(t *testing.T) {
	s := newSummary(StatusProcessing, 2)
	s.MarkFailedAttempt(3)
	if s.Status != StatusFailed || s.RetryCount != 3 {
		t.Fatalf("got status=%s retries=%d, want failed/3", s.Status, s.RetryCount)
	}
}

func TestExhaustBudget(t *testing.T) {
	s := newSummary(StatusNew, 3)
	if !s.ExhaustBudget(3) {
		t.Fatal("budget-exhausted new summary must be forced failed")
	}
	if s.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", s.Status)
	}

	// Idempotent: a second call reports no change.
	if s.ExhaustBudget(3) {
		t.Error("already-failed summary reported a change")
	}

	s = newSummary(StatusNew, 1)
	if s.ExhaustBudget(3) {
		t.Error("summary below budget was forced failed")
	}
	s = newSummary(StatusDone, 5)
	if s.ExhaustBudget(3) {
		t.Error("done summary was forced failed")
	}
}

func TestManualRetry(t *testing.T) {
	s := newSummary(StatusFailed, 2)
	if !s.ManualRetry(3) {
		t.Fatal("retryable failed summary must accept manual retry")
	}
	if s.Status != StatusNew || s.RetryCount != 2 {
		t.Fatalf("got status=%s retries=%d, want new with count preserved", s.Status, s.RetryCount)
	}

	// At budget the manual path is a silent no-op: permanent dead letter.
	s = newSummary(StatusFailed, 3)
	if s.ManualRetry(3) {
		t.Fatal("summary at budget must not be manually retryable")
	}
	if s.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", s.Status)
	}

	if newSummary(StatusNew, 0).ManualRetry(3) {
		t.Error("non-failed summary accepted manual retry")
	}
}

func TestEnumValidity(t *testing.T) {
	for _, typ := range []SummaryType{SummaryDaily, SummaryWeekly, SummaryMonthly} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if SummaryType("hourly").Valid() {
		t.Error("unknown type accepted")
	}
	for _, st := range []SummaryStatus{StatusNew, StatusProcessing, StatusDone, StatusFailed} {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if SummaryStatus("stuck").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestRelatedIDsContains(t *testing.T) {
	ids := RelatedIDs{"a", "b"}
	if !ids.Contains("b") || ids.Contains("c") {
		t.Errorf("Contains misbehaved for %v", ids)
	}
}
