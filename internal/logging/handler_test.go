// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modhost/modhost/internal/logging"
)

func TestSetup_JSONStampsServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("modhost", "1.2.3", "json", "debug", &buf)

	logger.Info("listener faulted", "callback", "on-join")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "modhost", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "listener faulted", record["msg"])
	assert.Equal(t, "on-join", record["callback"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("modhost", "dev", "text", "debug", &buf)

	logger.Warn("rejected handle")

	out := buf.String()
	assert.True(t, strings.Contains(out, "rejected handle"))
	assert.True(t, strings.Contains(out, "service=modhost"))
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("modhost", "dev", "json", "warn", &buf)

	logger.Debug("registration trace")
	logger.Info("lifecycle")
	assert.Empty(t, buf.String())

	logger.Warn("double release detected")
	assert.NotEmpty(t, buf.String())
}

func TestSetup_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("modhost", "dev", "json", "debug", &buf)

	logger.With("script", "greeter").Info("ran", "count", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "greeter", record["script"])
	assert.Equal(t, "modhost", record["service"])
	assert.Equal(t, float64(2), record["count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	// Unknown strings fall back to debug rather than failing startup.
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("verbose"))
}
