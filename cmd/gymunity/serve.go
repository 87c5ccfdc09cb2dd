package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlagappanMk24/Gymunity/internal/platform/httpserver"
	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/migrations"
	"github.com/AlagappanMk24/Gymunity/modules/subscriptions/infrastructure/scheduler"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "seed demo data before serving")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, withSeed bool) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}
	logger.Info("starting gymunity")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("shutdown incomplete", slog.Any("error", err))
		}
	}()

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(ctx, a.db, migrations.FS); err != nil {
			return err
		}
	}
	if withSeed {
		if _, err := newSeeder(a, cfg).Run(ctx); err != nil {
			return err
		}
	}

	sweeps, err := scheduler.New(cfg.Jobs.SubscriptionSweepSchedule, a.subscriptions.Sweeper(), logger)
	if err != nil {
		return fmt.Errorf("scheduling subscription sweep: %w", err)
	}
	sweeps.Start()

	go a.limiter.Run(ctx, time.Minute)

	server := httpserver.New(httpserver.Config{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, a.router(), logger)
	if err := server.Listen(); err != nil {
		_ = sweeps.Stop(context.Background())
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			logger.Error("server error", slog.Any("error", err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := sweeps.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stopping scheduler: %w", err))
	}
	logger.Info("server stopped")
	return errors.Join(append(errs, err)...)
}
