package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToFormatsByEnv(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf, "prod").Info("started", "env", "prod")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, "INFO", line["level"])

	buf.Reset()
	NewTo(&buf, "dev").Debug("starting", "env", "dev")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=starting")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
	}{
		{"dev", true},
		{"staging", true},
		{"prod", false},
		{"unknown", true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			NewTo(&buf, tt.env).Debug("probe")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)
		})
	}
}
