// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  3. Plain environment variables only (no file), e.g. inside AWS Lambda
//
// Every key in the file can be overridden by the environment variable named
// in its env:"..." tag, and falls back to its env-default:"..." value.
// After loading, the struct is checked with go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	Storage Storage `yaml:"storage"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`

	Audit Audit `yaml:"audit"`
}

// Storage selects and configures the backend records are persisted in.
type Storage struct {
	// Driver is one of:
	//   sqlite3: SQLite file at DSN (mattn/go-sqlite3)
	//   pgx: PostgreSQL at DSN (jackc/pgx stdlib driver)
	//   dynamodb: DynamoDB tables in Region (optionally at Endpoint)
	//   memory: in-process tables, lost on exit
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite3" validate:"oneof=sqlite3 pgx dynamodb memory"`

	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string `yaml:"dsn" env:"STORAGE_DSN" env-default:"users-audit.db"`

	// Region and Endpoint are only read by the dynamodb driver.
	// Endpoint is meant for DynamoDB Local; leave empty for AWS.
	Region   string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`

	// OrderColumn is the timestamp column rotation sorts by.
	OrderColumn string `yaml:"order_column" env:"STORAGE_ORDER_COLUMN" env-default:"datetime" validate:"required"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082" validate:"required"`
}

// Audit configures the audit trail rotation.
type Audit struct {
	Table   string `yaml:"table" env:"AUDIT_TABLE" env-default:"audit" validate:"required"`
	MaxSize int    `yaml:"max_size" env:"AUDIT_MAX_SIZE" env-default:"100" validate:"gte=1"`
}

// Load reads the config file at path (or only the environment when path is
// empty) and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it so the message
		// names the path rather than a cryptic "open: no such file".
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: invalid config: %w", err)
	}
	if (cfg.Storage.Driver == "sqlite3" || cfg.Storage.Driver == "pgx") && cfg.Storage.DSN == "" {
		return nil, fmt.Errorf("config.Load: storage.dsn is required for driver %s", cfg.Storage.Driver)
	}

	return &cfg, nil
}

// MustLoad resolves the config path from the flag value or CONFIG_PATH and
// loads it.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to fatal on failure. If this function returns, the
// config is valid.
func MustLoad(flagPath string) *Config {
	configPath := flagPath
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}
