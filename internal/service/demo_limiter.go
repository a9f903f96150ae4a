package service

import (
	"sync"

	"language-coach-server/internal/domain"
)

// maxTrackedSessions bounds limiter memory; when hit, all counts reset.
// Demo limits are advisory and non-persistent, so losing counts is acceptable.
const maxTrackedSessions = 10000

// SessionDemoLimiter allows a fixed number of demo requests per session ID.
// It is deliberately separate from the entitlement gate: demo traffic never
// touches profiles or ledgers, and changes here cannot weaken the
// authenticated path.
type SessionDemoLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
}

func NewSessionDemoLimiter(limit int) *SessionDemoLimiter {
	return &SessionDemoLimiter{
		counts: make(map[string]int),
		limit:  limit,
	}
}

// Allow records one demo request for the session and reports whether it is
// within the fixed budget. An empty session ID shares a single bucket.
func (l *SessionDemoLimiter) Allow(sessionID string) error {
	if sessionID == "" {
		sessionID = "anonymous"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.counts) >= maxTrackedSessions {
		l.counts = make(map[string]int)
	}

	if l.counts[sessionID] >= l.limit {
		return domain.ErrDemoLimitExceeded
	}
	l.counts[sessionID]++
	return nil
}
