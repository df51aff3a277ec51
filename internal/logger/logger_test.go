package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lexiflash/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
	assert.Contains(t, buf.String(), "WARN")
}

func TestLogger_FieldsAreSortedAndPrefixed(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false)).
		WithPrefix("stats").
		WithFields(map[string]any{"user_id": "u1", "test_id": "t1"})

	log.Info("applied")

	out := buf.String()
	assert.Contains(t, out, "[stats]")
	assert.Contains(t, out, "applied test_id=t1 user_id=u1")
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.Discard()
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true)).
		WithPrefix("api").
		WithFields(map[string]any{"status": 404, "msg": "ignored"})

	log.Warn("request completed with %s", "client error")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "api", entry["prefix"])
	assert.Equal(t, "request completed with client error", entry["msg"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}
