package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/pgstore"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the configured store and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	switch driver := r.config.Store.Driver; driver {
	case "", "memory":
		r.logger.Info("memory store needs no setup")
		return nil

	case "sqlite":
		r.logger.Info("initializing database", "path", r.config.Database.Path)
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
		return nil

	case "postgres":
		pool, err := pgstore.Connect(ctx, r.config.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		r.logger.Info("running postgres migrations")
		if err := pgstore.Migrate(ctx, pool); err != nil {
			return err
		}
		r.logger.Info("setup complete for postgres")
		return nil

	default:
		return fmt.Errorf("%w: unknown store driver %q", shared.ErrInvalidConfig, driver)
	}
}

// SetupConfig writes the example configuration to --output.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}
