package assistant

import (
	"context"

	"github.com/google/uuid"

	"github.com/stratboard/stratboard/pkg/db/models"
)

// Store is the data-access capability the pipeline needs from the backing
// database. The gorm implementation lives in pkg/db; tests use an in-memory
// fake.
type Store interface {
	// Conversation and message persistence.
	ActiveConversation(ctx context.Context, user string) (*models.ChatConversation, error)
	CreateConversation(ctx context.Context, conversation *models.ChatConversation) error
	CompleteConversation(ctx context.Context, id uuid.UUID) error
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	UpdateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error)

	// Read views used for context enrichment.
	CurrentVisionMission(ctx context.Context) ([]models.VisionMission, error)
	ActiveObjectives(ctx context.Context, limit int) ([]models.Objective, error)
	SwotItems(ctx context.Context) ([]models.SwotItem, error)
	CanvasBlocks(ctx context.Context) ([]models.CanvasBlock, error)

	// Mutations driven by the action executor.
	ReplaceVisionMission(ctx context.Context, row *models.VisionMission) error
	CreateObjective(ctx context.Context, row *models.Objective) error
	AddCoreValue(ctx context.Context, row *models.CoreValue) error
	AddStrategicObjective(ctx context.Context, row *models.StrategicObjective) error
	AddStrategicPillar(ctx context.Context, row *models.StrategicPillar) error
	AddSwotItem(ctx context.Context, row *models.SwotItem) error

	WriteAuditLog(ctx context.Context, entry *models.AuditLog) error
}
