// cmd/api/migrate.go
// This file contains the migrate command and its up/down subcommands, which
// apply the embedded schema migrations to PostgreSQL.
package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carowners/api/internal/data"
)

// newMigrator is swapped in tests.
var newMigrator = data.NewMigrator

func newMigrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	registerDatabaseFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of steps to migrate down (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := migrationDSN(cmd, *configFile)
			if err != nil {
				return err
			}
			return migrateUp(cliLogger(cmd), dsn)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := migrationDSN(cmd, *configFile)
			if err != nil {
				return err
			}
			steps, err := cmd.Flags().GetUint("num-steps")
			if err != nil {
				return fmt.Errorf("failed to get num-steps flag: %w", err)
			}
			return migrateDown(cliLogger(cmd), dsn, int(steps))
		},
	})

	return cmd
}

func cliLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}

// migrationDSN resolves db-dsn with the same precedence as serve.
func migrationDSN(cmd *cobra.Command, configFile string) (string, error) {
	v := viper.New()
	if err := initViper(v, cmd.Flags(), configFile); err != nil {
		return "", err
	}
	dsn := v.GetString("db-dsn")
	if dsn == "" {
		return "", errors.New("db-dsn is required")
	}
	return dsn, nil
}

func migrateUp(logger *slog.Logger, dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(logger, m)

	logger.Info("applying database migrations")
	if err := data.MigrateUp(m); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logMigrationVersion(logger, m)
	return nil
}

func migrateDown(logger *slog.Logger, dsn string, steps int) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(logger, m)

	logger.Info("rolling back database migrations", "steps", steps)
	if err := data.MigrateDown(m, steps); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logMigrationVersion(logger, m)
	return nil
}

func logMigrationVersion(logger *slog.Logger, m data.Migrator) {
	version, dirty, err := m.Version()
	switch {
	case err != nil:
		logger.Warn("unable to get migration version", "error", err)
	case dirty:
		logger.Warn("database is in a dirty state", "version", version)
	default:
		logger.Info("database schema is up to date", "version", version)
	}
}

func closeMigrator(logger *slog.Logger, m data.Migrator) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Error("failed to close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Error("failed to close migration database", "error", dbErr)
	}
}
