package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stratboard/stratboard/pkg/db/models"
)

type DB struct {
	DB *gorm.DB
}

func New(dsn string, logLevel logger.LogLevel) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	return &DB{DB: db}, nil
}

// UpdateSchema migrates or initializes the database to the current schema.
func (d *DB) UpdateSchema() error {
	return d.DB.AutoMigrate(
		&models.ChatConversation{},
		&models.ChatMessage{},
		&models.VisionMission{},
		&models.Objective{},
		&models.KeyResult{},
		&models.SwotItem{},
		&models.CanvasBlock{},
		&models.CoreValue{},
		&models.StrategicObjective{},
		&models.StrategicPillar{},
		&models.AuditLog{},
	)
}
