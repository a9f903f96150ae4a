package repository

import (
	"context"
	"fmt"
	"time"

	"language-coach-server/internal/domain"
)

// SupabaseConversationRepository implements the domain.ConversationRepository interface
type SupabaseConversationRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseConversationRepository creates a new Supabase conversation repository
func NewSupabaseConversationRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ConversationRepository {
	return &SupabaseConversationRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Upsert inserts or refreshes a conversation row.
func (r *SupabaseConversationRepository) Upsert(ctx context.Context, conv *domain.Conversation, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	row := map[string]interface{}{
		"id":          conv.ID,
		"user_id":     conv.UserID,
		"scenario_id": conv.ScenarioID,
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}

	_, _, err = client.From("conversations").
		Upsert(row, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}

// AppendTurns appends chat turns to a conversation.
func (r *SupabaseConversationRepository) AppendTurns(ctx context.Context, turns []domain.ConversationTurn, token string) error {
	if len(turns) == 0 {
		return nil
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(turns))
	for _, t := range turns {
		rows = append(rows, map[string]interface{}{
			"conversation_id": t.ConversationID,
			"role":            t.Role,
			"content":         t.Content,
		})
	}

	_, _, err = client.From("conversation_messages").
		Insert(rows, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to append conversation turns: %w", err)
	}
	return nil
}
