package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry owns all live sessions, keyed by session ID. All methods are safe
// for concurrent use; operations hold the lock only for map access, never
// across I/O.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxDuration time.Duration
	logger      *zap.Logger
}

// NewRegistry creates a registry that expires sessions after maxDuration.
func NewRegistry(maxDuration time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// Create inserts a new session in the Idle state. An empty deviceID is
// recorded as "unknown".
func (r *Registry) Create(id, deviceID string) *Session {
	if deviceID == "" {
		deviceID = "unknown"
	}
	s := newSession(id, deviceID)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Info("session created", zap.String("session_id", id), zap.String("device_id", deviceID))
	return s
}

// Get returns the session for id, if present.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// End removes the session unconditionally. Removing an absent id is a no-op.
func (r *Registry) End(id string) {
	r.mu.Lock()
	_, existed := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if existed {
		r.logger.Info("session ended", zap.String("session_id", id))
	}
}

// CleanupExpired removes every session older than the maximum duration and
// returns how many were removed. The registry holds no timer; an external
// scheduler must call this periodically.
func (r *Registry) CleanupExpired() int {
	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if s.Expired(r.maxDuration) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if len(expired) > 0 {
		r.logger.Info("expired sessions removed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
