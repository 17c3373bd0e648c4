// Package cli builds the users-api command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/logger"
	"github.com/aanand-mishra/users-api/internal/storage/backend"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "users-api",
		Short: "User and audit record service",
		Long: `users-api stores user accounts and their audit trail in SQLite,
PostgreSQL, DynamoDB or memory, and serves them over a JSON HTTP API.

Configuration is read from --config, else from the file named by
CONFIG_PATH, else from environment variables alone.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to the YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInitDBCommand(opts))
	cmd.AddCommand(NewRotateCommand(opts))

	return cmd
}

// env is what every command starts from: a validated config, the installed
// logger and an open backend.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store backend.Backend
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Error("failed to close storage", slog.String("error", err.Error()))
	}
}

func (o *RootOptions) open(ctx context.Context) (*env, error) {
	path := o.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log := logger.Setup(cfg.Env)
	log.Debug("config loaded",
		slog.String("env", cfg.Env),
		slog.String("driver", cfg.Storage.Driver))

	store, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise storage: %w", err)
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}
