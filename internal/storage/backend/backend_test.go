package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/storage/dynamo"
	"github.com/aanand-mishra/users-api/internal/storage/memory"
	"github.com/aanand-mishra/users-api/internal/storage/relational"
)

func TestOpenMemory(t *testing.T) {
	b, err := Open(context.Background(), config.Storage{Driver: "memory", OrderColumn: "datetime"})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Memory{}, b)
	_, ok := b.(storage.Rotator)
	assert.True(t, ok)
}

func TestOpenSQLiteCanInitSchema(t *testing.T) {
	b, err := Open(context.Background(), config.Storage{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &relational.Relational{}, b)
	schema, ok := b.(SchemaInitializer)
	require.True(t, ok)
	assert.NoError(t, schema.InitSchema(context.Background()))
}

func TestOpenDynamoWithEndpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	b, err := Open(context.Background(), config.Storage{
		Driver:   "dynamodb",
		Region:   "eu-west-1",
		Endpoint: "http://localhost:8000",
	})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &dynamo.Dynamo{}, b)
	_, ok := b.(storage.Rotator)
	assert.False(t, ok)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "mongo"})
	assert.EqualError(t, err, `backend.Open: unknown driver "mongo"`)
}
