package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/users-api/internal/http/handlers"
	"github.com/aanand-mishra/users-api/internal/jobs"
	"github.com/aanand-mishra/users-api/internal/storage/backend"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	InitSchema bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM, then finish in-flight
requests (up to 5 seconds) and exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.InitSchema, "init-schema", false, "create missing tables before serving")

	return cmd
}

// runServe follows this sequence:
//  1. Load configuration and initialise the logger
//  2. Open the configured storage backend
//  3. Register all HTTP routes
//  4. Start the HTTP server in a separate goroutine
//  5. Block until an OS signal (Ctrl+C / kill) arrives
//  6. Gracefully shut down: finish in-flight requests, then return
func runServe(ctx context.Context, rootOpts *RootOptions, opts *ServeOptions) error {
	e, err := rootOpts.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	log := e.log
	log.Info("starting users-api",
		slog.String("env", e.cfg.Env),
		slog.String("driver", e.cfg.Storage.Driver))

	if opts.InitSchema {
		if err := initSchema(ctx, e); err != nil {
			return err
		}
	}

	router := handlers.NewRouter(e.store, jobs.NewRotate(e.store, e.cfg, log))

	server := &http.Server{
		Addr:    e.cfg.HTTPServer.Addr,
		Handler: router,

		// Production hardening: timeouts against slow clients.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and reports
	// a failure to start on serveErr.
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", e.cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			return err
		}
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	}

	// Shutdown stops accepting new connections and waits for active
	// requests, up to the 5 second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func initSchema(ctx context.Context, e *env) error {
	schema, ok := e.store.(backend.SchemaInitializer)
	if !ok {
		e.log.Info("backend manages its own schema, nothing to create",
			slog.String("driver", e.cfg.Storage.Driver))
		return nil
	}
	if err := schema.InitSchema(ctx); err != nil {
		return err
	}
	e.log.Info("schema ready", slog.String("driver", e.cfg.Storage.Driver))
	return nil
}
