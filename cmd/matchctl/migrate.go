package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Connects to DB_URL and applies every pending schema migration. Applied migrations are skipped.",
	RunE:  runMigrate,
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(cmd.Context(), cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(cmd.Context(), pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("migrations applied", slog.Int("count", len(postgres.Migrations())))
	return nil
}
