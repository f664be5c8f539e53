// Package queue decouples audit-trail persistence from request handling.
package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
	"github.com/oculab/microbio-portal/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditTrail wraps a HistoryRepository with a fixed set of writer goroutines:
// Insert enqueues and returns, workers persist in the background. Entries are
// routed to workers by consistent hashing on the case ID, so the stored order
// within one case matches the order the workflow produced.
type AuditTrail struct {
	workers []chan *domain.HistoryEntry
	inner   ports.HistoryRepository
	log     zerolog.Logger
}

// NewAuditTrail creates an AuditTrail with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditTrail(inner ports.HistoryRepository, numWorkers int, log zerolog.Logger) *AuditTrail {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	t := &AuditTrail{
		workers: make([]chan *domain.HistoryEntry, numWorkers),
		inner:   inner,
		log:     log,
	}
	for i := range t.workers {
		t.workers[i] = make(chan *domain.HistoryEntry, channelBuffer)
	}
	return t
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// entries still buffered at that point are dropped, the trail is best-effort.
func (t *AuditTrail) Start(ctx context.Context) {
	for i, ch := range t.workers {
		go t.runWorker(ctx, i, ch)
	}
}

// Insert hands the entry to the worker responsible for its case and returns
// immediately. The call is non-blocking up to channelBuffer capacity. Storage
// failures are handled by the worker and never reported here: the trail must
// not fail the operation that produced it.
func (t *AuditTrail) Insert(_ context.Context, e *domain.HistoryEntry) error {
	t.workers[t.shardIndex(e.CaseID)] <- e
	return nil
}

// ListByCase reads through to the underlying repository.
func (t *AuditTrail) ListByCase(ctx context.Context, caseID string, limit int) ([]*domain.HistoryEntry, error) {
	return t.inner.ListByCase(ctx, caseID, limit)
}

// shardIndex maps a case ID deterministically to a worker index.
func (t *AuditTrail) shardIndex(caseID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(caseID))
	return int(h.Sum32()) % len(t.workers)
}

func (t *AuditTrail) runWorker(ctx context.Context, id int, ch <-chan *domain.HistoryEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := t.inner.Insert(ctx, e); err != nil {
				metrics.HistoryWriteFailuresTotal.Inc()
				t.log.Error().Err(err).
					Str("case_id", e.CaseID).
					Str("action", e.Action).
					Int("worker_id", id).
					Msg("history write failed")
			}
		}
	}
}
