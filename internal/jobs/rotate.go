// Package jobs holds background maintenance work: currently the audit
// trail rotation shared by the HTTP endpoint, the CLI and the Lambda.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/storage"
)

// Result is what a rotation reports back.
type Result struct {
	Rotated bool `json:"rotated"`
}

// Rotate caps Table at MaxSize rows by archiving the oldest ones.
type Rotate struct {
	// Rotator is nil when the backend cannot rotate.
	Rotator storage.Rotator
	Driver  string
	Table   string
	MaxSize int
	Log     *slog.Logger
}

// NewRotate builds the job for the audit table configured in cfg.
func NewRotate(s storage.Storage, cfg *config.Config, log *slog.Logger) *Rotate {
	r, _ := s.(storage.Rotator)
	return &Rotate{
		Rotator: r,
		Driver:  cfg.Storage.Driver,
		Table:   cfg.Audit.Table,
		MaxSize: cfg.Audit.MaxSize,
		Log:     log,
	}
}

// Run rotates once.
func (j *Rotate) Run(ctx context.Context) (Result, error) {
	if j.Rotator == nil {
		return Result{}, &model.ModelError{Msg: fmt.Sprintf("rotate is not supported by %s backend", j.Driver)}
	}

	rotated, err := j.Rotator.Rotate(ctx, j.Table, j.MaxSize)
	if err != nil {
		j.Log.Error("rotation failed",
			slog.String("table", j.Table),
			slog.String("error", err.Error()))
		return Result{}, err
	}
	j.Log.Info("rotation finished",
		slog.String("table", j.Table),
		slog.Int("max_size", j.MaxSize),
		slog.Bool("rotated", rotated))
	return Result{Rotated: rotated}, nil
}

// HandleScheduled is the Lambda entry point for an EventBridge (CloudWatch
// Events) schedule rule.
func (j *Rotate) HandleScheduled(ctx context.Context, event events.CloudWatchEvent) (Result, error) {
	j.Log.Info("scheduled rotation",
		slog.String("event_id", event.ID),
		slog.String("source", event.Source),
		slog.Time("time", event.Time))
	return j.Run(ctx)
}
