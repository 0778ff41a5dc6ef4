package session

import (
	"sync"
	"time"

	"tempobook/services/booking"

	"go.uber.org/zap"
)

// Session binds one conversation identity to its orchestrator. The embedded
// mutex serializes message handling per identity; the orchestrator itself is
// not safe for concurrent use.
type Session struct {
	Identity     string
	Orchestrator *booking.Orchestrator

	// lastActive is guarded by the owning cache's mutex.
	lastActive time.Time

	mu sync.Mutex
}

// Acquire takes the per-identity lock. Every orchestrator operation for this
// identity must happen between Acquire and Release.
func (s *Session) Acquire() {
	s.mu.Lock()
}

// Release drops the per-identity lock.
func (s *Session) Release() {
	s.mu.Unlock()
}

// Cache is the bounded registry of live sessions. Memory is bounded two
// ways: idle sessions past the timeout are swept, and when the live count
// exceeds capacity the least-recently-active session is reclaimed. Evicting
// a session discards only in-memory draft state; the conversation log in
// Redis survives it.
type Cache struct {
	mu       sync.Mutex
	sessions map[string]*Session

	capacity    int
	idleTimeout time.Duration
	factory     func() *booking.Orchestrator
	logger      *zap.Logger
	now         func() time.Time
}

// NewCache builds a cache holding at most capacity sessions, each evicted
// after idleTimeout without activity. factory produces the orchestrator for
// a fresh session.
func NewCache(capacity int, idleTimeout time.Duration, factory func() *booking.Orchestrator, logger *zap.Logger) *Cache {
	return &Cache{
		sessions:    make(map[string]*Session),
		capacity:    capacity,
		idleTimeout: idleTimeout,
		factory:     factory,
		logger:      logger,
		now:         time.Now,
	}
}

// GetOrCreate returns the live session for identity, creating one if none
// exists, and bumps its activity timestamp. Concurrent callers for the same
// identity always receive the same session.
func (c *Cache) GetOrCreate(identity string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictIdleLocked(now)

	if s, ok := c.sessions[identity]; ok {
		s.lastActive = now
		return s
	}

	s := &Session{
		Identity:     identity,
		Orchestrator: c.factory(),
		lastActive:   now,
	}
	c.sessions[identity] = s
	c.evictOverCapacityLocked()

	c.logger.Debug("session created",
		zap.String("identity", identity),
		zap.Int("live", len(c.sessions)))
	return s
}

// Remove drops the session for identity, if any. Used on completion and
// abandonment so finished conversations free their slot immediately.
func (c *Cache) Remove(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, identity)
}

// Len returns the live session count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// EvictIdle sweeps every session idle longer than the timeout and returns
// how many were removed. The cron janitor calls this periodically;
// GetOrCreate also runs it lazily.
func (c *Cache) EvictIdle(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictIdleLocked(now)
}

func (c *Cache) evictIdleLocked(now time.Time) int {
	evicted := 0
	for identity, s := range c.sessions {
		if now.Sub(s.lastActive) > c.idleTimeout {
			delete(c.sessions, identity)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("idle sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

// evictOverCapacityLocked reclaims the oldest sessions until the live count
// is back at capacity.
func (c *Cache) evictOverCapacityLocked() {
	for len(c.sessions) > c.capacity {
		var oldestID string
		var oldestAt time.Time
		first := true
		for identity, s := range c.sessions {
			if first || s.lastActive.Before(oldestAt) {
				oldestID = identity
				oldestAt = s.lastActive
				first = false
			}
		}
		delete(c.sessions, oldestID)
		c.logger.Info("session evicted under capacity pressure",
			zap.String("identity", oldestID),
			zap.Int("capacity", c.capacity))
	}
}
