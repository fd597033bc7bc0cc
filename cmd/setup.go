package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Set auth.jwt_secret (or MARQUEE_JWT_SECRET) before running 'marquee serve'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if r.config == nil {
		if err := shared.CreateConfigFile(path); err == nil {
			r.logger.Info("config file not found, created from template", "path", path)
		}
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}

// MigrateUp applies pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	db, err := r.connect(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) == 0 {
		return r.writePlain("Schema is up to date\n")
	}
	for _, v := range applied {
		r.writePlain("✓ Applied migration %04d\n", v)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	db, err := r.connect(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigration(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.logger.Warn("rolled back migration", "version", version)
	return r.writePlain("✓ Rolled back migration %04d\n", version)
}

// MigrateStatus lists every migration with its applied time.
func (r *Runner) MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.connect(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := shared.MigrationState(ctx, db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, m := range state {
		applied := "pending"
		if m.AppliedAt != nil {
			applied = m.AppliedAt.Format("2006-01-02 15:04:05")
		}
		r.writePlain("%04d  %-28s %s\n", m.Version, m.Name, applied)
	}
	return nil
}
