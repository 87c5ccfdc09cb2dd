package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AlagappanMk24/Gymunity/internal/config"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/internal/seed"
	"github.com/AlagappanMk24/Gymunity/migrations"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts, exercise library, program and package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if cfg.Postgres.AutoMigrate {
				if err := postgres.Migrate(ctx, a.db, migrations.FS); err != nil {
					return err
				}
			}
			res, err := newSeeder(a, cfg).Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("seeding complete",
				slog.String("admin_id", res.AdminID.String()),
				slog.String("trainer_id", res.TrainerID.String()),
				slog.String("client_id", res.ClientID.String()),
				slog.String("program_id", res.ProgramID.String()),
				slog.String("package_id", res.PackageID.String()),
			)
			return nil
		},
	}
}

func newSeeder(a *app, cfg config.Config) *seed.Seeder {
	return seed.New(a.identity, a.trainers, a.programs, a.packages, cfg.Seed, a.logger)
}
