package obs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "debug", "json")
	l.Debug().Str("uid", "1").Msg("collection_loaded")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "collection_loaded", m["message"])
	assert.Equal(t, "1", m["uid"])
	assert.Equal(t, "debug", m["level"])
}

func TestNewLogger_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "nonsense", "json")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestLoggerDefaultsToNop(t *testing.T) {
	assert.NotPanics(t, func() { Logger.Info().Msg("dropped") })
}
