// Summary tiers, lifecycle states, and state-machine transitions.
//
// The transition methods below are the only sanctioned way to move a Summary
// through its lifecycle. They never touch the database; callers persist the
// mutated aggregate afterwards.
package domain

// SummaryType is the tier of a summary. Tiers form a strict bottom-up
// dependency chain: weekly summaries aggregate done daily summaries, monthly
// summaries aggregate done weekly summaries.
type SummaryType string

const (
	SummaryDaily   SummaryType = "daily"
	SummaryWeekly  SummaryType = "weekly"
	SummaryMonthly SummaryType = "monthly"
)

// Valid reports whether t is a known tier.
func (t SummaryType) Valid() bool {
	switch t {
	case SummaryDaily, SummaryWeekly, SummaryMonthly:
		return true
	}
	return false
}

// SummaryStatus is the lifecycle state of a summary.
//
// new → processing → done, or processing → new/failed on error. failed is
// terminal once RetryCount has reached the configured budget; below the
// budget it is equivalent to new for scheduling purposes.
type SummaryStatus string

const (
	StatusNew        SummaryStatus = "new"
	StatusProcessing SummaryStatus = "processing"
	StatusDone       SummaryStatus = "done"
	StatusFailed     SummaryStatus = "failed"
)

// Valid reports whether s is a known lifecycle state.
func (s SummaryStatus) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusDone, StatusFailed:
		return true
	}
	return false
}

// BeginProcessing marks the summary as being worked on. It reports false when
// the summary is not in a processable state (already done, mid-flight, or
// failed past its budget).
func (s *Summary) BeginProcessing(maxRetries int) bool {
	switch s.Status {
	case StatusNew:
	case StatusFailed:
		if s.RetryCount >= maxRetries {
			return false
		}
	default:
		return false
	}
	s.Status = StatusProcessing
	return true
}

// MarkDone records successful content generation.
func (s *Summary) MarkDone(title, content string) {
	s.Title = title
	s.Content = content
	s.Status = StatusDone
}

// MarkFailedAttempt records one failed processing attempt: the retry count is
// incremented, and the summary returns to new while attempts remain or drops
// to failed once the budget is reached.
func (s *Summary) MarkFailedAttempt(maxRetries int) {
	s.RetryCount++
	if s.RetryCount >= maxRetries {
		s.Status = StatusFailed
	} else {
		s.Status = StatusNew
	}
}

// ExhaustBudget forces a summary whose retry count has reached the budget
// into failed. It reports whether the status actually changed, so callers can
// skip a redundant save. Summaries below the budget are left untouched.
func (s *Summary) ExhaustBudget(maxRetries int) bool {
	if s.RetryCount < maxRetries || s.Status == StatusFailed || s.Status == StatusDone {
		return false
	}
	s.Status = StatusFailed
	return true
}

// CanRetry reports whether a manual retry is permitted: the summary must be
// failed with retry attempts still unspent. A summary that exhausted its
// budget via the automatic path stays failed permanently unless the
// configured budget is raised.
func (s *Summary) CanRetry(maxRetries int) bool {
	return s.Status == StatusFailed && s.RetryCount < maxRetries
}

// ManualRetry applies the operator-initiated failed → new transition. The
// retry count is preserved. It reports false (a no-op, not an error) when the
// summary is not retryable.
func (s *Summary) ManualRetry(maxRetries int) bool {
	if !s.CanRetry(maxRetries) {
		return false
	}
	s.Status = StatusNew
	return true
}
