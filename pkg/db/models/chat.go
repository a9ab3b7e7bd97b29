package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

const (
	ConversationStatusActive    = "active"
	ConversationStatusCompleted = "completed"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// ChatConversation stores one assistant chat session for a user. A user has
// at most one active conversation at a time; older ones are marked completed
// and retained.
type ChatConversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User who owns this conversation
	User string `json:"user" gorm:"not null;index"`

	Title string `json:"title"`

	// Status is either active or completed. Conversations are never hard-deleted.
	Status string `json:"status" gorm:"not null;index;default:active"`

	// Metadata stores additional information like start time and client descriptor
	Metadata pgtype.JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`
}

// ChatMessage is one turn in a conversation. Content is immutable once
// persisted except for the action flags and outcome annotations appended to
// assistant messages.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;not null;index"`

	// Role is either user or assistant.
	Role    string `json:"role" gorm:"not null"`
	Content string `json:"content" gorm:"not null"`

	// User is the acting user for user-authored messages.
	User string `json:"user"`

	// Action state flags. At most one of ActionPending, ActionCompleted and
	// ActionFailed is set at a time; a pending flag must transition to
	// completed or failed before the turn is closed.
	HasAction       bool `json:"has_action"`
	ActionPending   bool `json:"action_pending"`
	ActionCompleted bool `json:"action_completed"`
	ActionFailed    bool `json:"action_failed"`

	Metadata pgtype.JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`
}
