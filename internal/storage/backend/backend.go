// Package backend opens the storage.Storage implementation named by the
// configuration. It is the only package that knows about every driver.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/storage/dynamo"
	"github.com/aanand-mishra/users-api/internal/storage/memory"
	"github.com/aanand-mishra/users-api/internal/storage/relational"
)

// Backend is an open storage that must be closed when the process is done
// with it.
type Backend interface {
	storage.Storage
	io.Closer
}

// SchemaInitializer is implemented by backends that can create their own
// tables.
type SchemaInitializer interface {
	InitSchema(ctx context.Context) error
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Backend, error) {
	slog.Info("opening storage", slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "sqlite3", "pgx":
		r, err := relational.New(cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "memory":
		return memory.New(cfg.OrderColumn), nil
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("backend.Open: load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
		return dynamo.New(client), nil
	}
	return nil, fmt.Errorf("backend.Open: unknown driver %q", cfg.Driver)
}

