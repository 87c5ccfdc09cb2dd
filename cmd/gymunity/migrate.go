package main

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/internal/platform/spanner"
	"github.com/AlagappanMk24/Gymunity/migrations"
	identitypersistence "github.com/AlagappanMk24/Gymunity/modules/identity/infrastructure/persistence"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		migrateSubcommand(root, "up", "Apply every pending migration", postgres.Migrate),
		migrateSubcommand(root, "status", "Print the state of each migration", postgres.MigrationStatus),
		migrateSubcommand(root, "down", "Revert the most recent migration", postgres.Rollback),
		newMigrateSpannerCommand(root),
	)
	return cmd
}

// newMigrateSpannerCommand creates the identity tables when accounts live in
// Spanner. PostgreSQL migrations do not cover them.
func newMigrateSpannerCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "spanner",
		Short: "Create the Spanner account tables used when IDENTITY_STORE=spanner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			sc := spannerConfig(cfg)
			if err := spanner.ApplyDDL(cmd.Context(), sc, identitypersistence.SpannerDDL); err != nil {
				return err
			}
			logger.Info("spanner schema applied", slog.String("database", sc.DSN()))
			return nil
		},
	}
}

type migrateFunc func(ctx context.Context, db *postgres.DB, dir fs.FS) error

func migrateSubcommand(root *rootOptions, use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			db, err := connectPostgres(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(cmd.Context(), db, migrations.FS)
		},
	}
}
