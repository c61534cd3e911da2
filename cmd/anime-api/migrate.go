package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/anime-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending migrations to the configured database.

Postgres migrations are tracked by tern in the schema_version table; SQLite
uses PRAGMA user_version. Running it twice is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loggerService, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer loggerService.Shutdown()

		db, err := database.New(cfg, log, loggerService)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		log.Info().Str("driver", db.Driver).Msg("database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
