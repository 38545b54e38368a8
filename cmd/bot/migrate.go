package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Proton-105/dataeng-assistant/internal/database"
)

func migrateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			db, err := openDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.NewMigrator(db, a.log.Logger).Apply(ctx, database.Migrations())
			if err != nil {
				return err
			}

			a.log.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("versions", applied))
			return nil
		},
	}
}
