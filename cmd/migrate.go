package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/chathub/db"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded sql migrations (postgres) or auto-migrate the schema (sqlite)",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	log := logger.LoggerWrapper()

	conn, err := initDB(cfg.Database, false)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The SQL files target postgres; sqlite is only used for local runs and tests.
	if cfg.Database.Driver == "sqlite" {
		if migrateRollback {
			return fmt.Errorf("rollback is not supported for the sqlite driver")
		}
		return autoMigrate(conn.Gorm)
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, conn.SQL.DB, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, conn.SQL.DB)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	log.Info("migration finished", "command", command, "version", version)
	return nil
}
