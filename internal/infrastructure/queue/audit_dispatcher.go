package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/api/metrics"
	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher routes audit events to a fixed set of writer goroutines
// using consistent hashing on the actor, which keeps one actor's trail in
// recording order.
type AuditDispatcher struct {
	workers []chan domain.AuditEvent
	store   ports.AuditStore
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded writers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, store ports.AuditStore, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all writer goroutines. Writers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record hands an event to the writer responsible for its actor. A full
// writer queue drops the event rather than stalling the request; the trail
// is advisory, the request path is not allowed to wait on it.
func (d *AuditDispatcher) Record(event domain.AuditEvent) {
	i := d.shardIndex(shardKey(event))
	select {
	case d.workers[i] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Inc()
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("action", event.Action).
			Str("actor_id", event.ActorID).
			Int("worker_id", i).
			Msg("audit event dropped, writer queue full")
	}
}

// shardKey prefers the actor; events with no actor yet (failed logins) shard
// by client address instead.
func shardKey(event domain.AuditEvent) string {
	if event.ActorID != "" {
		return event.ActorID
	}
	return event.IP
}

func (d *AuditDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(worker).Dec()

			start := time.Now()
			if err := d.store.Insert(ctx, event); err != nil {
				metrics.AuditEventsErrorsTotal.Inc()
				metrics.AuditWriteDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
				d.log.Error().Err(err).
					Str("action", event.Action).
					Str("actor_id", event.ActorID).
					Int("worker_id", id).
					Msg("audit event write failed")
				continue
			}
			metrics.AuditEventsStoredTotal.WithLabelValues(event.Action).Inc()
			metrics.AuditWriteDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
		}
	}
}
