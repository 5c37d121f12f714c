package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

// Migrate creates or updates every table, foreign key and index.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	tables := model.Tables()
	if err := db.WithContext(ctx).AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("schema migrated", zap.Int("tables", len(tables)))
	return nil
}
