// Package services implements the summary engine: the create/process
// operations, the gap-filling scheduler, and the background processing queue.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and the
// processing loop; translation into user-facing messages or HTTP status codes
// should be performed at the handler layer. Note that two members of the
// failure taxonomy are deliberately NOT hard errors at their call sites:
// dependency-incomplete periods are skipped by the scheduler, and a manual
// retry past the budget is a silent no-op.
package services

import "errors"

var (
	// ErrSummaryNotFound indicates that the requested summary does not exist.
	ErrSummaryNotFound = errors.New("summary not found")

	// ErrPersistence wraps repository read/write failures so callers can
	// distinguish "lookup failed" from "no data".
	ErrPersistence = errors.New("persistence error")

	// ErrProcessingFailed wraps a content-generation failure for one summary.
	// The failed attempt has already been recorded against the retry budget
	// when this is returned.
	ErrProcessingFailed = errors.New("summary processing failed")

	// ErrDependencyIncomplete signals that a parent summary's child tier is
	// not fully done yet. The scheduler treats it as a skip, never as a
	// batch failure.
	ErrDependencyIncomplete = errors.New("child summaries incomplete")

	// ErrRetryBudgetExceeded indicates a processing attempt on a summary
	// whose automatic retries are exhausted.
	ErrRetryBudgetExceeded = errors.New("retry budget exceeded")

	// ErrAlreadyProcessing indicates the summary is mid-flight in another
	// pass and must not be picked up again.
	ErrAlreadyProcessing = errors.New("summary already processing")

	// ErrPassInProgress is returned by ProcessQueue when a pass is already
	// running; the overlapping invocation is a no-op.
	ErrPassInProgress = errors.New("processing pass already in progress")
)
