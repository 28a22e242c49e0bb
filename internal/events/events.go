// Package events defines the outbound scheduling events the summary engine
// emits and a bounded in-memory queue that delivers them fire-and-forget.
//
// Delivery is best-effort: publishing never blocks the scheduler,
// no ordering is guaranteed to subscribers, and events are dropped (and
// counted) when the buffer is full. Downstream listeners that need durable
// delivery should read summary state from the repository instead.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Event types emitted by the scheduler, one per tier.
const (
	TypeDailyDataCollectionRequested  = "daily.data_collection.requested"
	TypeWeeklySummarizationRequested  = "weekly.summarization.requested"
	TypeMonthlySummarizationRequested = "monthly.summarization.requested"
)

// Event is one scheduling notification: a summary of the given tier was just
// created for the given period and wants downstream attention.
type Event struct {
	Type       string    `json:"type"`
	SummaryID  string    `json:"summary_id"`
	PeriodKey  string    `json:"period_key"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the outbound contract the engine writes to.
type Publisher interface {
	// Publish enqueues an event without blocking. Delivery is best-effort.
	Publish(e Event)
}

// Queue is a bounded in-memory Publisher. Events are consumed from C, either
// by a custom listener or by the Drain helper.
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64

	closeOnce sync.Once
}

// NewQueue returns a queue buffering up to size events (minimum 1).
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Event, size)}
}

// Publish enqueues e, dropping it when the buffer is full.
func (q *Queue) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	select {
	case q.ch <- e:
	default:
		q.dropped.Add(1)
	}
}

// C exposes the consumer side of the queue. The channel is closed by Close.
func (q *Queue) C() <-chan Event { return q.ch }

// Dropped returns how many events were discarded due to a full buffer.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Close closes the queue. Publish must not be called after Close; Drain
// consumers terminate once the remaining buffer is emptied.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}

// Drain consumes the queue until it is closed, logging each event. It is the
// default subscriber wired in by the server entrypoint and is meant to run in
// its own goroutine.
func Drain(q *Queue, log zerolog.Logger) {
	for e := range q.C() {
		log.Info().
			Str("event", e.Type).
			Str("summary_id", e.SummaryID).
			Str("period", e.PeriodKey).
			Time("occurred_at", e.OccurredAt).
			Msg("summary event")
	}
}

// Discard is a Publisher that ignores everything. Useful in tests and when
// eventing is disabled.
type Discard struct{}

// Publish drops the event.
func (Discard) Publish(Event) {}
