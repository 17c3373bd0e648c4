// audit-rotator is an AWS Lambda that archives old audit entries. Wire it
// to an EventBridge schedule rule; each invocation rotates once.
//
// Configuration comes from environment variables only (CONFIG_PATH may
// point to a file bundled with the function).
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/jobs"
	"github.com/aanand-mishra/users-api/internal/logger"
	"github.com/aanand-mishra/users-api/internal/storage/backend"
)

func main() {
	cfg := config.MustLoad("")
	log := logger.Setup(cfg.Env)

	// Opened once per container and reused by every warm invocation.
	store, err := backend.Open(context.Background(), cfg.Storage)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	job := jobs.NewRotate(store, cfg, log)
	lambda.Start(job.HandleScheduled)
}
