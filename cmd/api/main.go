// Package main is the entry point for the car owners API server.
// It wires together configuration, the storage backend, and the HTTP router,
// and exposes the serve, migrate and version commands.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carowners/api/internal/data"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs and /healthcheck.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config  serverConfig // Server configuration
	logger  *slog.Logger // Structured logger that writes to stdout
	models  data.Models  // Storage layer for owners and cars
	metrics *httpMetrics // Prometheus collectors served on /metrics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the carowners command tree. Running it without a
// subcommand starts the HTTP server.
func newRootCmd() *cobra.Command {
	var configFile string

	serve := newServeCmd(&configFile)

	root := &cobra.Command{
		Use:          "carowners",
		Short:        "Car owners REST API",
		Long:         `carowners serves a JSON API for registering car owners and their cars.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a configuration file (YAML, JSON or TOML)")
	registerServeFlags(root.Flags())
	registerDatabaseFlags(root.Flags())

	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd(&configFile))
	root.AddCommand(newVersionCmd())

	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := initViper(v, cmd.Flags(), *configFile); err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	registerServeFlags(cmd.Flags())
	registerDatabaseFlags(cmd.Flags())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "carowners %s\n", appVersion)
		},
	}
}

// run opens the configured store, wires up dependencies and blocks serving
// HTTP until a shutdown signal arrives.
func run(cfg serverConfig) error {
	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.logLevel}))

	app := &applicationDependencies{
		config:  cfg,
		logger:  logger,
		metrics: newHTTPMetrics(),
	}

	switch cfg.store {
	case storeMemory:
		app.models = data.NewMemoryModels()
		logger.Info("using in-memory store")
	default:
		if cfg.db.autoMigrate {
			if err := migrateUp(logger, cfg.db.dsn); err != nil {
				return err
			}
		}

		db, err := openDB(cfg)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		defer db.Close()

		logger.Info("database connection pool established")
		app.models = data.NewModels(db)
	}

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		return err
	}
	return nil
}

// openDB opens a PostgreSQL connection pool using the DSN stored in cfg,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(cfg serverConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
