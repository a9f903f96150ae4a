package domain

import "context"

// ChatMessage is a single turn in a conversation, as sent by the client.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages               []ChatMessage `json:"messages" validate:"required,min=1,max=60,dive"`
	ScenarioID             string        `json:"scenarioId" validate:"required,max=64"`
	UserLevel              string        `json:"userLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	UserLanguage           string        `json:"userLanguage,omitempty" validate:"omitempty,max=16"`
	AdaptiveLevel          int           `json:"adaptiveLevel,omitempty" validate:"omitempty,min=1,max=10"`
	IncludeInstantFeedback bool          `json:"includeInstantFeedback,omitempty"`
	ConversationID         string        `json:"conversationId,omitempty" validate:"omitempty,uuid4"`
	IsDemoMode             bool          `json:"isDemoMode,omitempty"`
	DemoSessionID          string        `json:"demoSessionId,omitempty" validate:"omitempty,max=64"`
}

// Scenario is a conversation setting (restaurant, interview, hotel, ...)
// with the persona prompt the AI plays.
type Scenario struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	PersonaPrompt string `json:"persona_prompt"`
	Level         string `json:"level,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Conversation groups the persisted turns of one scenario chat.
type Conversation struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ScenarioID string `json:"scenario_id"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// ConversationTurn is one persisted message of a conversation.
type ConversationTurn struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

// ChatChunk is a single fragment of a streamed model response. Err is set on
// the final chunk when the vendor stream failed mid-way; the channel is closed
// by the producer in all cases.
type ChatChunk struct {
	Text string
	Err  error
}

// ChatPrompt carries everything the chat vendor needs for one completion.
type ChatPrompt struct {
	SystemPrompt string
	Messages     []ChatMessage
}

// ChatProvider streams completions from the external LLM gateway.
// Implementations must close the returned channel when the stream ends or
// ctx is cancelled; a non-nil error return means the stream never started.
type ChatProvider interface {
	StreamChat(ctx context.Context, prompt ChatPrompt) (<-chan ChatChunk, error)
}

// ScenarioRepository defines read access to the scenario catalogue.
type ScenarioRepository interface {
	List(ctx context.Context, token string) ([]*Scenario, error)
	GetByID(ctx context.Context, id string, token string) (*Scenario, error)
}

// ConversationRepository defines persistence for chat history.
type ConversationRepository interface {
	Upsert(ctx context.Context, conv *Conversation, token string) error
	AppendTurns(ctx context.Context, turns []ConversationTurn, token string) error
}

// ChatService produces the streamed assistant reply for a chat request.
type ChatService interface {
	Stream(ctx context.Context, userID string, req *ChatRequest, token string) (<-chan ChatChunk, error)
}
