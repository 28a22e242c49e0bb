// Package services – Processor
//
// The processor is the timer-driven engine loop. On each tick it runs one
// queue pass: load every pending summary oldest-first and process them
// sequentially, pacing attempts with the configured retry delay. A
// single-flight guard ensures at most one pass runs at a time across the
// background loop and manual triggers; an overlapping request returns
// ErrPassInProgress without touching the queue.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/observability"
)

// ScheduleRunner runs one gap-filling pass. Implemented by Scheduler.
type ScheduleRunner interface {
	Schedule(ctx context.Context, upTo time.Time) (ScheduleResult, error)
}

// ItemProcessor processes a single summary by id. Implemented by
// SummaryService.
type ItemProcessor interface {
	Process(ctx context.Context, id string) error
}

// ProcessorConfig carries the engine knobs.
type ProcessorConfig struct {
	// AutoSchedule runs one schedule pass at startup.
	AutoSchedule bool
	// AutoProcess runs the background queue loop.
	AutoProcess bool
	// MaxRetries caps automatic retry attempts per summary.
	MaxRetries int
	// RetryDelay is the pause between consecutive items in a pass.
	RetryDelay time.Duration
	// ProcessInterval is the period of the background queue loop.
	ProcessInterval time.Duration
}

// ProcessResult reports the outcome of one queue pass.
type ProcessResult struct {
	// Processed is the number of summaries attempted.
	Processed int `json:"processed"`
	// Succeeded is how many reached done.
	Succeeded int `json:"succeeded"`
	// Failed is how many attempts failed (the summary may retry later).
	Failed int `json:"failed"`
	// Exhausted is how many were marked failed for having no budget left.
	Exhausted int `json:"exhausted"`
}

// Processor owns the background processing loop and the single-flight queue
// pass. Start and Stop bracket the loop; ProcessQueue and RetryFailed are
// also callable directly, e.g. from HTTP handlers.
type Processor struct {
	// DB is the GORM handle used for queue queries.
	DB *gorm.DB
	// Repo lists pending and failed summaries.
	Repo SummaryStore
	// Svc processes individual summaries.
	Svc ItemProcessor
	// Sched runs the startup schedule pass when AutoSchedule is set.
	Sched ScheduleRunner
	// Cfg holds the engine knobs.
	Cfg ProcessorConfig
	// Clk supplies time. Defaults to the real clock.
	Clk Clock
	// Log receives loop diagnostics.
	Log zerolog.Logger

	mu         sync.Mutex
	processing bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewProcessor constructs a Processor with the real clock.
func NewProcessor(db *gorm.DB, r SummaryStore, svc ItemProcessor, sched ScheduleRunner, cfg ProcessorConfig, log zerolog.Logger) *Processor {
	return &Processor{DB: db, Repo: r, Svc: svc, Sched: sched, Cfg: cfg, Clk: RealClock(), Log: log}
}

// Start runs the startup schedule pass (when enabled) and launches the
// background queue loop (when enabled). A failed startup schedule pass is
// logged, not fatal; the loop still starts.
func (p *Processor) Start(ctx context.Context) {
	if p.Cfg.AutoSchedule && p.Sched != nil {
		if res, err := p.Sched.Schedule(ctx, p.Clk.Now()); err != nil {
			p.Log.Error().Err(err).Msg("startup schedule pass failed")
		} else {
			p.Log.Info().Int("created", res.Total()).Msg("startup schedule pass")
		}
	}

	if !p.Cfg.AutoProcess {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(ctx)
}

// Stop signals the loop and waits for any in-flight pass to finish. It is a
// no-op if the loop never started.
func (p *Processor) Stop() {
	if p.stop == nil {
		return
	}
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Processor) loop(ctx context.Context) {
	defer close(p.done)

	ticker := p.Clk.NewTicker(p.Cfg.ProcessInterval)
	defer ticker.Stop()

	p.runPass(ctx)
	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.runPass(ctx)
		}
	}
}

// runPass executes one queue pass, tolerating an overlap with a manual
// trigger.
func (p *Processor) runPass(ctx context.Context) {
	res, err := p.ProcessQueue(ctx)
	switch {
	case errors.Is(err, ErrPassInProgress):
		p.Log.Debug().Msg("queue pass already running, skipping tick")
	case err != nil:
		p.Log.Error().Err(err).Msg("queue pass failed")
	case res.Processed > 0:
		p.Log.Info().
			Int("processed", res.Processed).
			Int("succeeded", res.Succeeded).
			Int("failed", res.Failed).
			Int("exhausted", res.Exhausted).
			Msg("queue pass complete")
	}
}

// ProcessQueue runs one pass over the pending queue, oldest first. Pending
// summaries whose retry budget is already spent are marked failed for good
// instead of being attempted. Consecutive attempts within a pass are paced
// by the retry delay.
//
// Returns ErrPassInProgress when another pass is already running.
func (p *Processor) ProcessQueue(ctx context.Context) (ProcessResult, error) {
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return ProcessResult{}, ErrPassInProgress
	}
	p.processing = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}()

	ctx, span := observability.Tracer().Start(ctx, "processor.queue_pass")
	defer span.End()

	pending, err := p.Repo.ListPending(ctx, p.DB, p.Cfg.MaxRetries)
	if err != nil {
		return ProcessResult{}, err
	}

	var res ProcessResult
	for i := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		sum := &pending[i]

		if sum.RetryCount >= p.Cfg.MaxRetries {
			if sum.ExhaustBudget(p.Cfg.MaxRetries) {
				if err := p.Repo.Save(ctx, p.DB, sum); err != nil {
					p.Log.Error().Err(err).Str("summary_id", sum.ID).Msg("mark budget exhausted")
					continue
				}
				p.Log.Warn().
					Str("summary_id", sum.ID).
					Str("period", sum.PeriodKey).
					Int("retry_count", sum.RetryCount).
					Msg("retry budget exhausted")
			}
			res.Exhausted++
			continue
		}

		if res.Processed > 0 {
			p.Clk.Sleep(p.Cfg.RetryDelay)
		}
		res.Processed++
		if err := p.Svc.Process(ctx, sum.ID); err != nil {
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	span.SetAttributes(
		attribute.Int("queue.processed", res.Processed),
		attribute.Int("queue.exhausted", res.Exhausted),
	)
	return res, nil
}

// RetryFailed re-queues summaries stuck in status failed that still have
// retry budget and processes them immediately. Summaries past their budget
// are left untouched. Returns how many summaries were re-queued.
func (p *Processor) RetryFailed(ctx context.Context) (int, error) {
	failed, err := p.Repo.ListByStatus(ctx, p.DB, domain.StatusFailed)
	if err != nil {
		return 0, err
	}

	retried := 0
	for i := range failed {
		if ctx.Err() != nil {
			return retried, ctx.Err()
		}
		sum := &failed[i]
		if !sum.ManualRetry(p.Cfg.MaxRetries) {
			continue
		}
		if err := p.Repo.Save(ctx, p.DB, sum); err != nil {
			p.Log.Error().Err(err).Str("summary_id", sum.ID).Msg("re-queue failed summary")
			continue
		}
		if retried > 0 {
			p.Clk.Sleep(p.Cfg.RetryDelay)
		}
		retried++
		if err := p.Svc.Process(ctx, sum.ID); err != nil {
			p.Log.Warn().Err(err).Str("summary_id", sum.ID).Msg("manual retry attempt failed")
		}
	}
	return retried, nil
}
