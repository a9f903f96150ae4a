package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

type fakeScenarioRepo struct {
	scenarios map[string]*domain.Scenario
}

func (f *fakeScenarioRepo) List(ctx context.Context, token string) ([]*domain.Scenario, error) {
	out := make([]*domain.Scenario, 0, len(f.scenarios))
	for _, s := range f.scenarios {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeScenarioRepo) GetByID(ctx context.Context, id string, token string) (*domain.Scenario, error) {
	s, ok := f.scenarios[id]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return s, nil
}

type fakeConvRepo struct {
	mu        sync.Mutex
	upserts   []*domain.Conversation
	turns     []domain.ConversationTurn
	persisted chan struct{}
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{persisted: make(chan struct{}, 1)}
}

func (f *fakeConvRepo) Upsert(ctx context.Context, conv *domain.Conversation, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, conv)
	return nil
}

func (f *fakeConvRepo) AppendTurns(ctx context.Context, turns []domain.ConversationTurn, token string) error {
	f.mu.Lock()
	f.turns = append(f.turns, turns...)
	f.mu.Unlock()
	select {
	case f.persisted <- struct{}{}:
	default:
	}
	return nil
}

type fakeChatProvider struct {
	chunks     []domain.ChatChunk
	startErr   error
	callCount  int
	lastPrompt domain.ChatPrompt
}

func (f *fakeChatProvider) StreamChat(ctx context.Context, prompt domain.ChatPrompt) (<-chan domain.ChatChunk, error) {
	f.callCount++
	f.lastPrompt = prompt
	if f.startErr != nil {
		return nil, f.startErr
	}
	out := make(chan domain.ChatChunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func testScenario() *domain.Scenario {
	return &domain.Scenario{
		ID:            "restaurant",
		Title:         "Ordering at a restaurant",
		PersonaPrompt: "You are a friendly waiter.",
		Level:         "beginner",
	}
}

func chatRequest() *domain.ChatRequest {
	return &domain.ChatRequest{
		ScenarioID: "restaurant",
		Messages: []domain.ChatMessage{
			{Role: "user", Content: "Hola, una mesa para dos."},
		},
	}
}

func TestChatStream_RelaysChunksInOrder(t *testing.T) {
	provider := &fakeChatProvider{chunks: []domain.ChatChunk{
		{Text: "Claro, "},
		{Text: "por aquí "},
		{Text: "por favor."},
	}}
	svc := NewChatService(
		&fakeScenarioRepo{scenarios: map[string]*domain.Scenario{"restaurant": testScenario()}},
		newFakeConvRepo(),
		provider,
		NewMockLogger(),
	)

	out, err := svc.Stream(context.Background(), "u1", chatRequest(), "tok")
	require.NoError(t, err)

	var reply strings.Builder
	for chunk := range out {
		require.NoError(t, chunk.Err)
		reply.WriteString(chunk.Text)
	}
	assert.Equal(t, "Claro, por aquí por favor.", reply.String())
}

func TestChatStream_PersistsExchangeAfterCompletion(t *testing.T) {
	convRepo := newFakeConvRepo()
	provider := &fakeChatProvider{chunks: []domain.ChatChunk{{Text: "Bienvenido."}}}
	svc := NewChatService(
		&fakeScenarioRepo{scenarios: map[string]*domain.Scenario{"restaurant": testScenario()}},
		convRepo,
		provider,
		NewMockLogger(),
	)

	out, err := svc.Stream(context.Background(), "u1", chatRequest(), "tok")
	require.NoError(t, err)
	for range out {
	}

	select {
	case <-convRepo.persisted:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange was not persisted")
	}

	convRepo.mu.Lock()
	defer convRepo.mu.Unlock()
	require.Len(t, convRepo.upserts, 1)
	assert.Equal(t, "u1", convRepo.upserts[0].UserID)
	assert.Equal(t, "restaurant", convRepo.upserts[0].ScenarioID)
	assert.NotEmpty(t, convRepo.upserts[0].ID)

	require.Len(t, convRepo.turns, 2)
	assert.Equal(t, "user", convRepo.turns[0].Role)
	assert.Equal(t, "Hola, una mesa para dos.", convRepo.turns[0].Content)
	assert.Equal(t, "assistant", convRepo.turns[1].Role)
	assert.Equal(t, "Bienvenido.", convRepo.turns[1].Content)
}

func TestChatStream_DemoUserIsNotPersisted(t *testing.T) {
	convRepo := newFakeConvRepo()
	provider := &fakeChatProvider{chunks: []domain.ChatChunk{{Text: "Hola."}}}
	svc := NewChatService(
		&fakeScenarioRepo{scenarios: map[string]*domain.Scenario{"restaurant": testScenario()}},
		convRepo,
		provider,
		NewMockLogger(),
	)

	req := chatRequest()
	req.IsDemoMode = true
	out, err := svc.Stream(context.Background(), "", req, "")
	require.NoError(t, err)
	for range out {
	}

	select {
	case <-convRepo.persisted:
		t.Fatal("demo exchange must not be persisted")
	case <-time.After(100 * time.Millisecond):
	}
	convRepo.mu.Lock()
	defer convRepo.mu.Unlock()
	assert.Empty(t, convRepo.upserts)
}

func TestChatStream_NoPersistenceOnStreamError(t *testing.T) {
	convRepo := newFakeConvRepo()
	provider := &fakeChatProvider{chunks: []domain.ChatChunk{
		{Text: "Claro"},
		{Err: errors.New("stream reset")},
	}}
	svc := NewChatService(
		&fakeScenarioRepo{scenarios: map[string]*domain.Scenario{"restaurant": testScenario()}},
		convRepo,
		provider,
		NewMockLogger(),
	)

	out, err := svc.Stream(context.Background(), "u1", chatRequest(), "tok")
	require.NoError(t, err)
	var streamErr error
	for chunk := range out {
		if chunk.Err != nil {
			streamErr = chunk.Err
		}
	}
	require.Error(t, streamErr)

	select {
	case <-convRepo.persisted:
		t.Fatal("failed exchange must not be persisted")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChatStream_UnknownScenario(t *testing.T) {
	provider := &fakeChatProvider{}
	svc := NewChatService(
		&fakeScenarioRepo{scenarios: map[string]*domain.Scenario{}},
		newFakeConvRepo(),
		provider,
		NewMockLogger(),
	)

	_, err := svc.Stream(context.Background(), "u1", chatRequest(), "tok")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.GetStatusCode(err))
	assert.Equal(t, 0, provider.callCount)
}

func TestBuildSystemPrompt(t *testing.T) {
	req := chatRequest()
	req.UserLanguage = "Spanish"
	req.UserLevel = "intermediate"
	req.AdaptiveLevel = 4
	req.IncludeInstantFeedback = true

	prompt := buildSystemPrompt(testScenario(), req)
	assert.True(t, strings.HasPrefix(prompt, "You are a friendly waiter."))
	assert.Contains(t, prompt, "Respond in Spanish.")
	assert.Contains(t, prompt, "intermediate")
	assert.Contains(t, prompt, "Adaptive difficulty: 4 of 10.")
	assert.Contains(t, prompt, "correction note")

	// With no request hints the scenario level is used.
	minimal := buildSystemPrompt(testScenario(), chatRequest())
	assert.Contains(t, minimal, "beginner")
}
