package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpl_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Writer: &buf})

	log.WithComponent("SyncCoordinator").Info("Sync completed", "succeeded", 2, "failed", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Sync completed", line["message"])
	assert.Equal(t, "SyncCoordinator", line["component"])
	assert.EqualValues(t, 2, line["succeeded"])
	assert.EqualValues(t, 1, line["failed"])
}

func TestImpl_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "production", Writer: &buf})

	log.Debug("noisy")

	assert.Empty(t, buf.String())
}

func TestImpl_DevelopmentWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Opts{Env: "development", Writer: &buf})

	log.Warn("Store unavailable", "error", "disk full")

	assert.Contains(t, buf.String(), "Store unavailable")
	assert.Contains(t, buf.String(), "disk full")
}
