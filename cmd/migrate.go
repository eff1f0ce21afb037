package cmd

import (
	"context"
	"fmt"

	"github.com/fmastery/admin-console/internal/session/gormstore"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the session table migrations for the sqlite or postgres session driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of the session schema")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	switch cfg.Session.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("session driver %q has no schema to migrate", cfg.Session.Driver)
	}

	db, err := gormstore.Open(cfg.Session.Driver, cfg.Session.Source)
	if err != nil {
		return err
	}
	defer gormstore.New(db).Close()

	if err := gormstore.Migrate(ctx, db, cfg.Session.Driver, migrateRollback); err != nil {
		return err
	}

	direction := "applied"
	if migrateRollback {
		direction = "rolled back"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "session migrations %s (%s)\n", direction, cfg.Session.Driver)
	return nil
}
