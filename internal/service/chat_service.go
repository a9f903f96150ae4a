package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

const persistTimeout = 10 * time.Second

type chatService struct {
	scenarioRepo domain.ScenarioRepository
	convRepo     domain.ConversationRepository
	provider     domain.ChatProvider
	logger       domain.Logger
}

func NewChatService(
	scenarioRepo domain.ScenarioRepository,
	convRepo domain.ConversationRepository,
	provider domain.ChatProvider,
	logger domain.Logger,
) domain.ChatService {
	return &chatService{
		scenarioRepo: scenarioRepo,
		convRepo:     convRepo,
		provider:     provider,
		logger:       logger,
	}
}

// Stream resolves the scenario persona, opens the vendor stream and relays
// it chunk by chunk. For authenticated users the exchanged turns are
// persisted after the stream completes, best-effort; persistence failures
// never affect the response.
//
// Demo requests pass an empty userID and token; they get no persistence and
// the scenario lookup runs under the anon key.
func (s *chatService) Stream(ctx context.Context, userID string, req *domain.ChatRequest, token string) (<-chan domain.ChatChunk, error) {
	scenario, err := s.scenarioRepo.GetByID(ctx, req.ScenarioID, token)
	if err != nil {
		if errors.Is(err, domain.ErrScenarioNotFound) {
			return nil, apperrors.NewNotFoundError("Scenario not found")
		}
		return nil, apperrors.NewInternalError("failed to load scenario", err)
	}

	upstream, err := s.provider.StreamChat(ctx, domain.ChatPrompt{
		SystemPrompt: buildSystemPrompt(scenario, req),
		Messages:     req.Messages,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan domain.ChatChunk, 32)
	go func() {
		defer close(out)

		var reply strings.Builder
		completed := true
		for chunk := range upstream {
			if chunk.Err != nil {
				completed = false
			} else {
				reply.WriteString(chunk.Text)
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				// Client is gone; abandon the vendor stream. The credit
				// already deducted for this request is not refunded.
				return
			}
		}

		if completed && userID != "" && reply.Len() > 0 {
			s.persistExchange(userID, req, reply.String(), token)
		}
	}()
	return out, nil
}

func (s *chatService) persistExchange(userID string, req *domain.ChatRequest, reply string, token string) {
	// The request context may already be done once the stream has drained.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	conv := &domain.Conversation{
		ID:         convID,
		UserID:     userID,
		ScenarioID: req.ScenarioID,
	}
	if err := s.convRepo.Upsert(ctx, conv, token); err != nil {
		s.logger.Warn("Failed to persist conversation", "error", err, "conversation_id", convID)
		return
	}

	turns := []domain.ConversationTurn{}
	if last := lastUserMessage(req.Messages); last != nil {
		turns = append(turns, domain.ConversationTurn{
			ConversationID: convID,
			Role:           "user",
			Content:        last.Content,
		})
	}
	turns = append(turns, domain.ConversationTurn{
		ConversationID: convID,
		Role:           "assistant",
		Content:        reply,
	})

	if err := s.convRepo.AppendTurns(ctx, turns, token); err != nil {
		s.logger.Warn("Failed to persist conversation turns", "error", err, "conversation_id", convID)
	}
}

func lastUserMessage(messages []domain.ChatMessage) *domain.ChatMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return &messages[i]
		}
	}
	return nil
}

// buildSystemPrompt combines the scenario persona with the learner's level
// and language hints.
func buildSystemPrompt(scenario *domain.Scenario, req *domain.ChatRequest) string {
	var b strings.Builder
	b.WriteString(scenario.PersonaPrompt)

	if req.UserLanguage != "" {
		fmt.Fprintf(&b, "\nRespond in %s.", req.UserLanguage)
	}
	level := req.UserLevel
	if level == "" {
		level = scenario.Level
	}
	if level != "" {
		fmt.Fprintf(&b, "\nThe learner's level is %s; match your vocabulary and pace to it.", level)
	}
	if req.AdaptiveLevel > 0 {
		fmt.Fprintf(&b, "\nAdaptive difficulty: %d of 10.", req.AdaptiveLevel)
	}
	if req.IncludeInstantFeedback {
		b.WriteString("\nAfter each learner message, add one short correction note when they make a mistake.")
	}
	return b.String()
}
