package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"storefront-backend/internal/ordering"
	"storefront-backend/internal/persist"
)

// Session is one shopper's scope: an OrderManager plus the lock that serializes
// requests against it.
type Session struct {
	ID       string
	mu       sync.Mutex
	orders   *OrderManager
	paying   atomic.Bool
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's order manager.
func (s *Session) Do(fn func(m *OrderManager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.orders)
}

type SessionRegistry struct {
	// Max caps live sessions; the least recently seen is evicted past it. Zero means no cap.
	Max int

	mu        sync.Mutex
	sessions  map[string]*Session
	store     persist.Store
	fees      func() ordering.FeePolicy
	ttl       time.Duration
	log       *slog.Logger
	now       func() time.Time
	lastSweep time.Time
}

// NewSessionRegistry builds sessions backed by store, which may be nil.
func NewSessionRegistry(store persist.Store, fees func() ordering.FeePolicy, ttl time.Duration, log *slog.Logger) *SessionRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		store:    store,
		fees:     fees,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Get returns the live session for id, restoring it from durable storage on first use.
func (r *SessionRegistry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	now := r.now()
	r.sweep(now)
	s, ok := r.sessions[id]
	if !ok {
		if r.Max > 0 && len(r.sessions) >= r.Max {
			r.evictOldest()
		}
		s = &Session{
			ID:     id,
			orders: NewOrderManager(persist.New(r.store, id, r.log), r.fees),
		}
		// held until restored so no request sees a half-loaded session
		s.mu.Lock()
		r.sessions[id] = s
	}
	s.lastSeen = now
	r.mu.Unlock()

	if !ok {
		s.orders.Restore(ctx)
		s.mu.Unlock()
	}
	return s
}

// Transient returns an empty session that is neither registered nor persisted.
// It serves reads from clients that have not started a session yet.
func (r *SessionRegistry) Transient() *Session {
	return &Session{orders: NewOrderManager(persist.New(nil, "", r.log), r.fees)}
}

// evictOldest drops the least recently seen session. Caller holds r.mu.
func (r *SessionRegistry) evictOldest() {
	var (
		oldest string
		seen   time.Time
	)
	for id, s := range r.sessions {
		if oldest == "" || s.lastSeen.Before(seen) {
			oldest, seen = id, s.lastSeen
		}
	}
	delete(r.sessions, oldest)
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep evicts idle sessions at most once per ttl. Caller holds r.mu.
func (r *SessionRegistry) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
