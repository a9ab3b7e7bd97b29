package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgtype"
	log "github.com/sirupsen/logrus"

	"github.com/stratboard/stratboard/pkg/db/models"
)

const changeReasonAI = "Updated by AI assistant"

// Result is the normalized outcome of one execution attempt.
type Result struct {
	Success              bool   `json:"success"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	Kind                 Kind   `json:"kind,omitempty"`
	Params               Params `json:"params,omitempty"`
	Message              string `json:"message,omitempty"`
	Error                string `json:"error,omitempty"`

	// Data is the newly created or updated row, when the mutation succeeded.
	Data any `json:"data,omitempty"`

	// Invalidates lists the read views affected by a successful mutation so
	// the caller can drop their cached copies.
	Invalidates []string `json:"-"`
}

// Executor applies action intents to the store, gating higher-risk kinds
// behind confirmation and recording an audit entry for every successful
// mutation. Audit writes are best-effort and never roll back the primary
// mutation.
type Executor struct {
	store  Store
	tables *Tables

	// GateMediumActions also holds medium-tier actions for confirmation on
	// the first pass. Off by default: only high gates.
	GateMediumActions bool

	now func() time.Time
}

func NewExecutor(store Store, tables *Tables) *Executor {
	return &Executor{
		store:  store,
		tables: tables,
		now:    time.Now,
	}
}

// Execute runs one action intent. With needsConfirmation true, gated tiers
// short-circuit into a requires-confirmation result without touching the
// store; calling again with needsConfirmation false performs the mutation.
func (e *Executor) Execute(ctx context.Context, kind Kind, params Params, user string, needsConfirmation bool) Result {
	tier, err := e.tables.Classify(kind)
	if err != nil {
		log.WithError(err).Error("refusing to execute unclassified action")
		return Result{Success: false, Kind: kind, Error: "Unknown action"}
	}

	gated := tier == TierHigh || (e.GateMediumActions && tier == TierMedium)
	if gated && needsConfirmation {
		return Result{
			RequiresConfirmation: true,
			Kind:                 kind,
			Params:               params,
			Message:              "This action requires your confirmation",
		}
	}

	var result Result
	switch kind {
	case KindUpdateVision:
		result = e.updateVisionMission(ctx, models.VisionMissionTypeVision, params.Content, user)
	case KindUpdateMission:
		result = e.updateVisionMission(ctx, models.VisionMissionTypeMission, params.Content, user)
	case KindCreateObjective:
		result = e.createObjective(ctx, params, user)
	case KindAddCoreValue:
		result = e.addCoreValue(ctx, params, user)
	case KindAddStrategicObjective:
		result = e.addStrategicObjective(ctx, params, user)
	case KindAddStrategicPillar:
		result = e.addStrategicPillar(ctx, params, user)
	case KindAddSwotItem:
		result = e.addSwotItem(ctx, params, user)
	default:
		return Result{Success: false, Kind: kind, Error: "Unknown action"}
	}

	result.Kind = kind
	result.Params = params
	return result
}

func (e *Executor) updateVisionMission(ctx context.Context, vmType, content, user string) Result {
	row := models.VisionMission{
		Type:         vmType,
		Content:      content,
		IsCurrent:    true,
		CreatedBy:    user,
		AIEnhanced:   true,
		ChangeReason: changeReasonAI,
	}

	// Supersede-then-insert runs as one transaction in the store so a
	// failure can't leave the type with no current row.
	if err := e.store.ReplaceVisionMission(ctx, &row); err != nil {
		log.WithError(err).WithField("type", vmType).Error("failed to update vision/mission")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_update_"+vmType, "vision_mission", row.ID,
		fmt.Sprintf("AI updated %s", vmType), map[string]any{"content": content})

	return Result{
		Success:     true,
		Data:        row,
		Message:     fmt.Sprintf("%s updated successfully", capitalize(vmType)),
		Invalidates: []string{PageVisionMission},
	}
}

func (e *Executor) createObjective(ctx context.Context, params Params, user string) Result {
	now := e.now()
	row := models.Objective{
		Title:       params.Title,
		Description: params.Description,
		Quarter:     fmt.Sprintf("Q%d", (int(now.Month())+2)/3),
		Year:        now.Year(),
		Status:      models.ObjectiveStatusActive,
		CreatedBy:   user,
		AIGenerated: true,
	}

	if err := e.store.CreateObjective(ctx, &row); err != nil {
		log.WithError(err).Error("failed to create objective")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_create_objective", "objective", row.ID,
		fmt.Sprintf("AI created objective %q", row.Title), map[string]any{"title": row.Title})

	return Result{
		Success:     true,
		Data:        row,
		Message:     "Objective created successfully",
		Invalidates: []string{PageOKR},
	}
}

func (e *Executor) addCoreValue(ctx context.Context, params Params, user string) Result {
	row := models.CoreValue{
		Title:       params.Title,
		Description: params.Description,
		CreatedBy:   user,
		AIGenerated: true,
	}

	if err := e.store.AddCoreValue(ctx, &row); err != nil {
		log.WithError(err).Error("failed to add core value")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_add_core_value", "core_value", row.ID,
		fmt.Sprintf("AI added core value %q", row.Title), map[string]any{"title": row.Title, "description": row.Description})

	return Result{
		Success:     true,
		Data:        row,
		Message:     "Core value added successfully",
		Invalidates: []string{PageStrategicFoundation},
	}
}

func (e *Executor) addStrategicObjective(ctx context.Context, params Params, user string) Result {
	timeframe, years := normalizeTimeframe(params.Timeframe)
	row := models.StrategicObjective{
		Title:       params.Title,
		Description: params.Description,
		Timeframe:   timeframe,
		TargetDate:  e.now().AddDate(years, 0, 0),
		CreatedBy:   user,
		AIGenerated: true,
	}

	if err := e.store.AddStrategicObjective(ctx, &row); err != nil {
		log.WithError(err).Error("failed to add strategic objective")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_add_strategic_objective", "strategic_objective", row.ID,
		fmt.Sprintf("AI added strategic objective %q", row.Title), map[string]any{"title": row.Title, "timeframe": timeframe})

	return Result{
		Success:     true,
		Data:        row,
		Message:     "Strategic objective added successfully",
		Invalidates: []string{PageStrategicFoundation},
	}
}

func (e *Executor) addStrategicPillar(ctx context.Context, params Params, user string) Result {
	row := models.StrategicPillar{
		Name:        params.Name,
		Description: params.Description,
		CreatedBy:   user,
		AIGenerated: true,
	}

	if err := e.store.AddStrategicPillar(ctx, &row); err != nil {
		log.WithError(err).Error("failed to add strategic pillar")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_add_strategic_pillar", "strategic_pillar", row.ID,
		fmt.Sprintf("AI added strategic pillar %q", row.Name), map[string]any{"name": row.Name})

	return Result{
		Success:     true,
		Data:        row,
		Message:     "Strategic pillar added successfully",
		Invalidates: []string{PageStrategicFoundation},
	}
}

func (e *Executor) addSwotItem(ctx context.Context, params Params, user string) Result {
	impact := params.ImpactLevel
	if impact == "" {
		impact = "medium"
	}
	row := models.SwotItem{
		Category:    params.Category,
		Content:     params.Content,
		ImpactLevel: impact,
		CreatedBy:   user,
		AIGenerated: true,
	}

	if err := e.store.AddSwotItem(ctx, &row); err != nil {
		log.WithError(err).Error("failed to add SWOT item")
		return Result{Success: false, Error: err.Error()}
	}

	e.writeAudit(ctx, user, "ai_add_swot_item", "swot_item", row.ID,
		fmt.Sprintf("AI added %s %q", row.Category, row.Content), map[string]any{"category": row.Category, "content": row.Content})

	return Result{
		Success:     true,
		Data:        row,
		Message:     fmt.Sprintf("Added to %ss", row.Category),
		Invalidates: []string{PageSwot},
	}
}

// writeAudit records an audit entry for a successful mutation. Failures are
// logged and swallowed: losing an audit row must not fail the mutation that
// already happened.
func (e *Executor) writeAudit(ctx context.Context, user, action, entityType string, entityID uint, description string, metadata map[string]any) {
	entry := models.AuditLog{
		User:        user,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}

	raw, err := json.Marshal(metadata)
	if err == nil {
		err = entry.Metadata.Set(raw)
	}
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("could not encode audit metadata")
		entry.Metadata = pgtype.JSONB{Status: pgtype.Null}
	}

	if err := e.store.WriteAuditLog(ctx, &entry); err != nil {
		log.WithError(err).WithField("action", action).Warn("audit log write failed")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func normalizeTimeframe(timeframe string) (string, int) {
	switch timeframe {
	case models.TimeframeOneYear:
		return models.TimeframeOneYear, 1
	case models.TimeframeFiveYear:
		return models.TimeframeFiveYear, 5
	default:
		return models.TimeframeThreeYear, 3
	}
}
