// Summary HTTP handlers.
//
// This file exposes the REST endpoints of the summary engine:
//   - GET    /summaries               (list, paginated, filterable)
//   - GET    /summaries/stats         (aggregate counts)
//   - GET    /summaries/{id}          (fetch one)
//   - DELETE /summaries/{id}          (remove one)
//   - POST   /summaries/schedule      (run a gap-filling pass)
//   - POST   /summaries/process       (run a queue pass)
//   - POST   /summaries/retry-failed  (re-queue failed summaries)
//
// Handlers are transport-thin: they validate input, call the engine services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/repo"
	"github.com/tbourn/go-task-backend/internal/services"
	"github.com/tbourn/go-task-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SummaryService defines the single-summary operations consumed by the HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// context for cancellation.
type SummaryService interface {
	// Get fetches one summary by id.
	Get(ctx context.Context, id string) (*domain.Summary, error)
	// ListPage returns a page of summaries plus the total count. Empty type
	// or status means no filter.
	ListPage(ctx context.Context, typ domain.SummaryType, status domain.SummaryStatus, page, pageSize int) ([]domain.Summary, int64, error)
	// Stats returns aggregate counts over all summaries.
	Stats(ctx context.Context) (*repo.SummaryStats, error)
	// Delete removes one summary by id.
	Delete(ctx context.Context, id string) error
}

// Scheduler runs one gap-filling pass up to the given time.
type Scheduler interface {
	Schedule(ctx context.Context, upTo time.Time) (services.ScheduleResult, error)
}

// Queue exposes the manual triggers of the processing loop.
type Queue interface {
	// ProcessQueue runs one pass over the pending summaries.
	ProcessQueue(ctx context.Context) (services.ProcessResult, error)
	// RetryFailed re-queues failed summaries with budget left.
	RetryFailed(ctx context.Context) (int, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the summary engine. It depends on
// abstract service interfaces to keep transport concerns separate from the
// engine itself.
type Handlers struct {
	svc   SummaryService
	sched Scheduler
	queue Queue

	// now is the clock used for schedule passes; swappable in tests.
	now func() time.Time
}

// New constructs a Handlers instance bound to the given services.
func New(svc SummaryService, sched Scheduler, queue Queue) *Handlers {
	return &Handlers{svc: svc, sched: sched, queue: queue, now: func() time.Time { return time.Now().UTC() }}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSummariesResponse wraps a page of summaries and pagination information.
type ListSummariesResponse struct {
	Summaries  []domain.Summary `json:"summaries"`
	Pagination Pagination       `json:"pagination"`
}

// ScheduleResponse reports a completed gap-filling pass.
type ScheduleResponse struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	Total   int `json:"total"`
}

// RetryFailedResponse reports how many summaries a retry sweep re-queued.
type RetryFailedResponse struct {
	Retried int `json:"retried"`
}

//
// Helpers
//

// clampPagination parses and bounds the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// ListSummaries returns a page of summaries, optionally filtered by the type
// and status query parameters.
func (h *Handlers) ListSummaries(c *gin.Context) {
	page, pageSize := clampPagination(c)

	typ := domain.SummaryType(c.Query("type"))
	if typ != "" && !typ.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be one of: daily, weekly, monthly")
		return
	}
	status := domain.SummaryStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of: new, processing, done, failed")
		return
	}

	items, total, err := h.svc.ListPage(c.Request.Context(), typ, status, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListSummariesResponse{
		Summaries: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSummary returns one summary by id.
func (h *Handlers) GetSummary(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "summary id must be a UUID")
		return
	}

	sum, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSummaryNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "summary not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sum)
}

// GetStats returns the aggregate summary counts.
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// DeleteSummary removes one summary by id.
func (h *Handlers) DeleteSummary(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "summary id must be a UUID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrSummaryNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "summary not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

// ScheduleSummaries runs one gap-filling pass over the lookback window and
// reports how many summaries were created per tier. The window ends at the
// current day unless an up_to query parameter (YYYY-MM-DD) is given.
func (h *Handlers) ScheduleSummaries(c *gin.Context) {
	upTo := h.now()
	if raw := c.Query("up_to"); raw != "" {
		day, err := domain.ParseDay(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "up_to must be a date in YYYY-MM-DD format")
			return
		}
		upTo = day
	}

	res, err := h.sched.Schedule(c.Request.Context(), upTo)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeScheduleFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ScheduleResponse{
		Daily:   res.Daily,
		Weekly:  res.Weekly,
		Monthly: res.Monthly,
		Total:   res.Total(),
	})
}

// ProcessSummaries runs one pass over the pending queue. When a pass is
// already running (background loop or another request) it answers 409
// without touching the queue.
func (h *Handlers) ProcessSummaries(c *gin.Context) {
	res, err := h.queue.ProcessQueue(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrPassInProgress) {
			fail(c, http.StatusConflict, ErrCodeConflict, "a processing pass is already running")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeProcessFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// RetryFailedSummaries re-queues failed summaries that still have retry
// budget and processes them immediately.
func (h *Handlers) RetryFailedSummaries(c *gin.Context) {
	n, err := h.queue.RetryFailed(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRetryFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, RetryFailedResponse{Retried: n})
}
