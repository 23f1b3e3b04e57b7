package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("cutter", false, false, &buf)

	logger.Debug("hidden")
	logger.Info("segment encoded", "segment", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO]  cutter: segment encoded: segment=2")

	buf.Reset()
	verbose := NewWithOutput("cutter", true, false, &buf)
	verbose.Named("join").Debug("list written", "entries", 3)
	assert.Contains(t, buf.String(), "cutter.join: list written: entries=3")
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("cutter", false, true, &buf)

	logger.Warn("bookmark deletion failed", "count", 4)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "warn", entry["@level"])
	assert.Equal(t, "cutter", entry["@module"])
	assert.Equal(t, "bookmark deletion failed", entry["@message"])
	assert.Equal(t, float64(4), entry["count"])
}
