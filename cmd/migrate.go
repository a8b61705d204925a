package cmd

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/psds-microservice/ticket-desk/internal/config"
	"github.com/psds-microservice/ticket-desk/internal/database"
	"github.com/psds-microservice/ticket-desk/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (STORE_DRIVER=postgres)",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../../.env") // repo root when running from bin/
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()
	if cfg.StoreDriver != config.StorePostgres {
		return errors.New("migrate: only needed for STORE_DRIVER=postgres")
	}
	if cfg.DB.Host == "" || cfg.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	version, err := database.MigrateUp(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrate up: ok", "version", version)
	return nil
}
