package models

import (
	"time"
)

const (
	VisionMissionTypeVision  = "vision"
	VisionMissionTypeMission = "mission"
)

const ObjectiveStatusActive = "active"

// SWOT categories. Stored lower-case, singular.
const (
	SwotCategoryStrength    = "strength"
	SwotCategoryWeakness    = "weakness"
	SwotCategoryOpportunity = "opportunity"
	SwotCategoryThreat      = "threat"
)

// Strategic objective timeframes.
const (
	TimeframeOneYear   = "1_year"
	TimeframeThreeYear = "3_years"
	TimeframeFiveYear  = "5_years"
)

// VisionMission is one version of the company vision or mission statement.
// History is append-only: at most one row per type carries IsCurrent, and
// updating supersedes the previous current row rather than replacing it.
type VisionMission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// Type is vision or mission.
	Type    string `json:"type" gorm:"not null;index"`
	Content string `json:"content" gorm:"not null"`

	IsCurrent bool `json:"is_current" gorm:"not null;index"`

	CreatedBy    string `json:"created_by"`
	AIEnhanced   bool   `json:"ai_enhanced"`
	ChangeReason string `json:"change_reason"`
}

// Objective is a quarterly objective with nested key results.
type Objective struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	// Quarter is Q1..Q4 for the given year.
	Quarter string `json:"quarter" gorm:"not null"`
	Year    int    `json:"year" gorm:"not null"`

	Status   string `json:"status" gorm:"not null;index;default:active"`
	Progress int    `json:"progress"`

	CreatedBy   string `json:"created_by"`
	AIGenerated bool   `json:"ai_generated"`

	KeyResults []KeyResult `json:"key_results,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

type KeyResult struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	ObjectiveID uint      `json:"objective_id" gorm:"not null;index"`

	Title        string  `json:"title" gorm:"not null"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	Unit         string  `json:"unit"`
}

type SwotItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Category string `json:"category" gorm:"not null;index"`
	Content  string `json:"content" gorm:"not null"`

	// ImpactLevel is low, medium or high.
	ImpactLevel string `json:"impact_level" gorm:"default:medium"`

	CreatedBy   string `json:"created_by"`
	AIGenerated bool   `json:"ai_generated"`
}

// CanvasBlock is one block of the business model canvas
// (key_partners, value_propositions, revenue_streams, ...).
type CanvasBlock struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BlockType string `json:"block_type" gorm:"not null;index"`
	Content   string `json:"content"`
}

type CoreValue struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	// DisplayOrder sorts values on the foundation screen; new items go last.
	DisplayOrder int `json:"display_order"`

	CreatedBy   string `json:"created_by"`
	AIGenerated bool   `json:"ai_generated"`
}

// StrategicObjective is a long-term (1/3/5 year) objective, distinct from the
// quarterly Objective.
type StrategicObjective struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	Timeframe  string    `json:"timeframe" gorm:"default:3_years"`
	TargetDate time.Time `json:"target_date"`

	DisplayOrder int `json:"display_order"`

	CreatedBy   string `json:"created_by"`
	AIGenerated bool   `json:"ai_generated"`
}

type StrategicPillar struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`

	DisplayOrder int `json:"display_order"`

	CreatedBy   string `json:"created_by"`
	AIGenerated bool   `json:"ai_generated"`
}
