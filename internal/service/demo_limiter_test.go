package service

import (
	"errors"
	"testing"

	"language-coach-server/internal/domain"
)

func TestSessionDemoLimiter_EnforcesPerSessionLimit(t *testing.T) {
	limiter := NewSessionDemoLimiter(3)

	for i := 0; i < 3; i++ {
		if err := limiter.Allow("session-a"); err != nil {
			t.Fatalf("request %d should be allowed, got %v", i+1, err)
		}
	}

	if err := limiter.Allow("session-a"); !errors.Is(err, domain.ErrDemoLimitExceeded) {
		t.Errorf("expected ErrDemoLimitExceeded, got %v", err)
	}

	// Other sessions have their own budget.
	if err := limiter.Allow("session-b"); err != nil {
		t.Errorf("session-b should be allowed, got %v", err)
	}
}

func TestSessionDemoLimiter_EmptySessionSharesBucket(t *testing.T) {
	limiter := NewSessionDemoLimiter(1)

	if err := limiter.Allow(""); err != nil {
		t.Fatalf("first anonymous request should be allowed, got %v", err)
	}
	if err := limiter.Allow(""); !errors.Is(err, domain.ErrDemoLimitExceeded) {
		t.Errorf("second anonymous request should be denied, got %v", err)
	}
}
