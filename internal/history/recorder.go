package history

import (
	"go.uber.org/zap"

	"github.com/voicekit/voicegate/internal/latency"
)

// Recorder writes latency records asynchronously via a buffered channel so
// database latency never sits on the session hot path. All methods are
// nil-safe (no-op on nil receiver).
type Recorder struct {
	store  *Store
	logger *zap.Logger
	ch     chan latency.Metrics
	done   chan struct{}
}

// NewRecorder starts the background writer. Must call Close when done.
func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		store:  store,
		logger: logger,
		ch:     make(chan latency.Metrics, 64),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for m := range r.ch {
		if err := r.store.InsertMetrics(m); err != nil {
			r.logger.Warn("history write failed",
				zap.String("session_id", m.SessionID),
				zap.Error(err),
			)
		}
	}
}

// Record enqueues one latency record. Drops the record when the buffer is
// full rather than blocking the pipeline.
func (r *Recorder) Record(m latency.Metrics) {
	if r == nil {
		return
	}
	select {
	case r.ch <- m:
	default:
		r.logger.Warn("history buffer full, dropping record",
			zap.String("session_id", m.SessionID))
	}
}

// Close drains pending writes and shuts down the background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.ch)
	<-r.done
}
