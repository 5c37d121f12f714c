package main

import (
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/bootstrap"
	"github.com/AbelardoOk/PlanTracker/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		inj := bootstrap.BuildContainer()
		cfg, err := do.Invoke[*config.Config](inj)
		if err != nil {
			return err
		}
		// the DB provider would migrate on its own when automigrate is on
		cfg.Database.AutoMigrate = false

		log := do.MustInvoke[*zap.Logger](inj)
		defer func() { _ = log.Sync() }()
		d, err := do.Invoke[*gorm.DB](inj)
		if err != nil {
			return err
		}
		return bootstrap.Migrate(cmd.Context(), d, log)
	},
}
