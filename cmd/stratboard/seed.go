package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stratboard/stratboard/pkg/db"
	"github.com/stratboard/stratboard/pkg/db/models"
	"github.com/stratboard/stratboard/pkg/flags"
)

// canvasBlockTypes are the nine standard business model canvas blocks.
var canvasBlockTypes = []string{
	"key_partners",
	"key_activities",
	"key_resources",
	"value_propositions",
	"customer_relationships",
	"channels",
	"customer_segments",
	"cost_structure",
	"revenue_streams",
}

func NewSeedCommand() *cobra.Command {
	f := flags.NewPostgresDatabaseFlags()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Loads a starter dataset into an empty database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not connect to db")
			}

			return seed(cmd.Context(), dbc)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

func seed(ctx context.Context, dbc *db.DB) error {
	store := db.NewPlanningStore(dbc)

	existing, err := store.CurrentVisionMission(ctx)
	if err != nil {
		return errors.WithMessage(err, "could not check for existing data")
	}
	if len(existing) > 0 {
		log.Info("database already has planning data, skipping seed")
		return nil
	}

	vision := models.VisionMission{
		Type:         models.VisionMissionTypeVision,
		Content:      "To be the most trusted partner for growing businesses.",
		IsCurrent:    true,
		CreatedBy:    "seed",
		ChangeReason: "Initial seed data",
	}
	if err := store.ReplaceVisionMission(ctx, &vision); err != nil {
		return errors.WithMessage(err, "could not seed vision")
	}

	mission := models.VisionMission{
		Type:         models.VisionMissionTypeMission,
		Content:      "We help teams plan, measure and deliver on their strategy.",
		IsCurrent:    true,
		CreatedBy:    "seed",
		ChangeReason: "Initial seed data",
	}
	if err := store.ReplaceVisionMission(ctx, &mission); err != nil {
		return errors.WithMessage(err, "could not seed mission")
	}

	swot := []models.SwotItem{
		{Category: models.SwotCategoryStrength, Content: "Experienced leadership team", ImpactLevel: "high", CreatedBy: "seed"},
		{Category: models.SwotCategoryWeakness, Content: "Limited brand recognition", ImpactLevel: "medium", CreatedBy: "seed"},
		{Category: models.SwotCategoryOpportunity, Content: "Growing demand in adjacent markets", ImpactLevel: "high", CreatedBy: "seed"},
		{Category: models.SwotCategoryThreat, Content: "New entrants with aggressive pricing", ImpactLevel: "medium", CreatedBy: "seed"},
	}
	for i := range swot {
		if err := store.AddSwotItem(ctx, &swot[i]); err != nil {
			return errors.WithMessage(err, "could not seed SWOT items")
		}
	}

	for _, blockType := range canvasBlockTypes {
		block := models.CanvasBlock{BlockType: blockType}
		if err := dbc.DB.WithContext(ctx).Create(&block).Error; err != nil {
			return errors.WithMessage(err, "could not seed canvas blocks")
		}
	}

	log.Info("seed data loaded")
	return nil
}
