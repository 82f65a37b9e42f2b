// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-vote/db"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate",
		Short:              "Create the database schema and exit",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok, err := loadConfig(args)
			if err != nil || !ok {
				return err
			}
			logger := commonRun(cfg)

			dbConn, err := db.Open(cmd.Context(), cfg.DatabaseType, cfg.DatabaseURL)
			if err != nil {
				logger.Error("database connection failed", "error", err)
				return err
			}
			defer dbConn.Close()

			if err := db.CreateSchema(cmd.Context(), dbConn); err != nil {
				logger.Error("schema creation failed", "error", err)
				return err
			}
			logger.Info("Database schema ready", "type", cfg.DatabaseType)
			return nil
		},
	}
}
