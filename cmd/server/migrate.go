package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/database"
	"github.com/iliyamo/carmarket/internal/platform/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)
			defer func() { _ = log.Sync() }()

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("schema migrated", zap.String("driver", cfg.DBDriver), zap.String("database", cfg.DBName))
			return nil
		},
	}
}
