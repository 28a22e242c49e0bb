// Package handlers defines the HTTP-layer error codes used across all API
// endpoints.
//
// The constants below form the stable, machine-readable error taxonomy
// returned in the `code` field of the ErrorResponse envelope. Codes are
// lowercase snake_case; the generic ones mirror common HTTP status semantics
// and the domain-specific ones name the operation that failed.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "a processing pass is already running"
//	}
package handlers

const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"

	// Domain-specific:
	ErrCodeListFailed       = "list_failed"
	ErrCodeScheduleFailed   = "schedule_failed"
	ErrCodeProcessFailed    = "process_failed"
	ErrCodeRetryFailed      = "retry_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeStatsFailed      = "stats_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
