package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(a, func(m *migrate.Migrate) error { return m.Up() })
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return runMigrations(a, func(m *migrate.Migrate) error { return m.Steps(-steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	cmd.AddCommand(down)

	return cmd
}

// runMigrations opens a temporary database/sql connection through the pgx
// stdlib driver and applies apply to the migration set at cfg.MigrationsPath.
func runMigrations(a *app, apply func(*migrate.Migrate) error) error {
	logger := a.logger
	logger.Info("Running database migrations...", slog.String("path", a.cfg.MigrationsPath))

	migrationDB, err := sql.Open("pgx", a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(a.cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	applyErr := apply(m)
	sourceErr, dbErr := m.Close()
	if applyErr != nil && !errors.Is(applyErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", applyErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(applyErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
