package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "ingest", "debug")
	logger.Debug().Str("source", "a.pdf").Msg("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ingest", entry["component"])
	assert.Equal(t, "a.pdf", entry["source"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithWriterDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "api", "bogus")
	logger.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	logger.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}
