package types

import (
	"time"

	"github.com/google/uuid"
)

type SenderType string

const (
	SenderUser SenderType = "user"
	SenderAI   SenderType = "ai"
)

type Conversation struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title" example:"北京三日游推荐..."`
	// ProviderConversationID continues the AI provider's own thread.
	ProviderConversationID *string   `json:"provider_conversation_id,omitempty"`
	MessageCount           int       `json:"message_count"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type Message struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	SenderType     SenderType   `json:"sender_type" example:"ai"`
	Content        string       `json:"content"`
	Attractions    []Attraction `json:"attractions,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ConversationWithMessages is a conversation and its messages in
// chronological order.
type ConversationWithMessages struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
}
