package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/stratboard/stratboard/pkg/db/models"
)

// PlanningStore is the gorm-backed data access layer for the planning
// dashboard and the assistant pipeline. It satisfies assistant.Store.
type PlanningStore struct {
	db *DB
}

func NewPlanningStore(dbc *DB) *PlanningStore {
	return &PlanningStore{db: dbc}
}

// ActiveConversation returns the user's most recent active conversation, or
// nil when they have none.
func (s *PlanningStore) ActiveConversation(ctx context.Context, user string) (*models.ChatConversation, error) {
	var conversation models.ChatConversation
	err := s.db.DB.WithContext(ctx).
		Where("\"user\" = ? AND status = ?", user, models.ConversationStatusActive).
		Order("created_at DESC").
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (s *PlanningStore) CreateConversation(ctx context.Context, conversation *models.ChatConversation) error {
	return s.db.DB.WithContext(ctx).Create(conversation).Error
}

func (s *PlanningStore) CompleteConversation(ctx context.Context, id uuid.UUID) error {
	return s.db.DB.WithContext(ctx).
		Model(&models.ChatConversation{}).
		Where("id = ?", id).
		Update("status", models.ConversationStatusCompleted).Error
}

func (s *PlanningStore) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	return s.db.DB.WithContext(ctx).Create(message).Error
}

func (s *PlanningStore) UpdateMessage(ctx context.Context, message *models.ChatMessage) error {
	// Save writes all fields, including flags cleared back to false.
	return s.db.DB.WithContext(ctx).Save(message).Error
}

func (s *PlanningStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (s *PlanningStore) CurrentVisionMission(ctx context.Context) ([]models.VisionMission, error) {
	var rows []models.VisionMission
	err := s.db.DB.WithContext(ctx).
		Where("is_current = ?", true).
		Find(&rows).Error
	return rows, err
}

func (s *PlanningStore) ActiveObjectives(ctx context.Context, limit int) ([]models.Objective, error) {
	var rows []models.Objective
	err := s.db.DB.WithContext(ctx).
		Preload("KeyResults").
		Where("status = ?", models.ObjectiveStatusActive).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *PlanningStore) SwotItems(ctx context.Context) ([]models.SwotItem, error) {
	var rows []models.SwotItem
	err := s.db.DB.WithContext(ctx).
		Order("category").
		Find(&rows).Error
	return rows, err
}

func (s *PlanningStore) CanvasBlocks(ctx context.Context) ([]models.CanvasBlock, error) {
	var rows []models.CanvasBlock
	err := s.db.DB.WithContext(ctx).Find(&rows).Error
	return rows, err
}

// ReplaceVisionMission marks every current row of the same type not-current
// and inserts the new current row, as one transaction. History is never
// destroyed, only superseded.
func (s *PlanningStore) ReplaceVisionMission(ctx context.Context, row *models.VisionMission) error {
	return s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VisionMission{}).
			Where("type = ? AND is_current = ?", row.Type, true).
			Update("is_current", false).Error; err != nil {
			return err
		}
		row.IsCurrent = true
		return tx.Create(row).Error
	})
}

func (s *PlanningStore) CreateObjective(ctx context.Context, row *models.Objective) error {
	return s.db.DB.WithContext(ctx).Create(row).Error
}

func (s *PlanningStore) AddCoreValue(ctx context.Context, row *models.CoreValue) error {
	return s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nextDisplayOrder(tx, "core_values", &row.DisplayOrder); err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}

func (s *PlanningStore) AddStrategicObjective(ctx context.Context, row *models.StrategicObjective) error {
	return s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nextDisplayOrder(tx, "strategic_objectives", &row.DisplayOrder); err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}

func (s *PlanningStore) AddStrategicPillar(ctx context.Context, row *models.StrategicPillar) error {
	return s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nextDisplayOrder(tx, "strategic_pillars", &row.DisplayOrder); err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}

func (s *PlanningStore) AddSwotItem(ctx context.Context, row *models.SwotItem) error {
	return s.db.DB.WithContext(ctx).Create(row).Error
}

func (s *PlanningStore) WriteAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.DB.WithContext(ctx).Create(entry).Error
}

// nextDisplayOrder assigns the ordering value that places a new item last.
func nextDisplayOrder(tx *gorm.DB, table string, order *int) error {
	var max int
	if err := tx.Table(table).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error; err != nil {
		return err
	}
	*order = max + 1
	return nil
}
