package handler

import (
	"context"
	"net/http"

	"language-coach-server/internal/domain"
)

type mockAuthService struct {
	user      *domain.SupabaseUser
	err       error
	lastToken string
	calls     int
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.calls++
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type mockEntitlementService struct {
	decision  *domain.EntitlementDecision
	balance   *domain.CreditBalance
	err       error
	calls     int
	lastAudio bool
}

func (m *mockEntitlementService) Authorize(ctx context.Context, userID string, isAudioRequest bool, token string) (*domain.EntitlementDecision, error) {
	m.calls++
	m.lastAudio = isAudioRequest
	if m.err != nil {
		return nil, m.err
	}
	return m.decision, nil
}

func (m *mockEntitlementService) Balance(ctx context.Context, userID string, token string) (*domain.CreditBalance, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.balance, nil
}

type mockChatService struct {
	chunks []domain.ChatChunk
	err    error
	calls  int
}

func (m *mockChatService) Stream(ctx context.Context, userID string, req *domain.ChatRequest, token string) (<-chan domain.ChatChunk, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan domain.ChatChunk, len(m.chunks))
	for _, c := range m.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

type mockSpeechService struct {
	text  string
	audio []byte
	err   error
	calls int
}

func (m *mockSpeechService) Transcribe(ctx context.Context, req *domain.TranscriptionRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockSpeechService) Synthesize(ctx context.Context, req *domain.SynthesisRequest) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

type mockDemoLimiter struct {
	err    error
	calls  int
	lastID string
}

func (m *mockDemoLimiter) Allow(sessionID string) error {
	m.calls++
	m.lastID = sessionID
	return m.err
}

type mockProfileRepo struct {
	profile *domain.Profile
	err     error
}

func (m *mockProfileRepo) GetByUserID(userID string, token string) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type mockScenarioRepo struct {
	scenarios []*domain.Scenario
	scenario  *domain.Scenario
	err       error
}

func (m *mockScenarioRepo) List(ctx context.Context, token string) ([]*domain.Scenario, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.scenarios, nil
}

func (m *mockScenarioRepo) GetByID(ctx context.Context, id string, token string) (*domain.Scenario, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.scenario, nil
}

func testUser() *domain.SupabaseUser {
	return &domain.SupabaseUser{ID: "user-123", Email: "learner@example.com"}
}

// withAuthContext stores the identity AuthMiddleware would have put on the
// request, for testing handlers that run behind it.
func withAuthContext(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), userContextKey, testUser())
	ctx = context.WithValue(ctx, tokenContextKey, "tok")
	return req.WithContext(ctx)
}
