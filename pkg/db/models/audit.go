package models

import (
	"time"

	"github.com/jackc/pgtype"
)

// AuditLog is an append-only record of a mutation performed through the
// assistant pipeline: who did what to which entity. Entries are never
// updated or deleted by this subsystem.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// User is the acting user on whose behalf the mutation ran.
	User string `json:"user" gorm:"not null;index"`

	// Action is a label like "ai_update_vision".
	Action string `json:"action" gorm:"not null"`

	EntityType string `json:"entity_type" gorm:"not null"`
	EntityID   uint   `json:"entity_id"`

	Description string `json:"description"`

	// Metadata captures the mutated content.
	Metadata pgtype.JSONB `json:"metadata,omitempty" gorm:"type:jsonb"`
}
