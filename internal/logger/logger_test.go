package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := Logger{Level: "warn", Format: "json"}.New(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("crs", "EPSG:31983").Msg("Shown")

	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"Shown"`)
	assert.Contains(t, buf.String(), `"crs":"EPSG:31983"`)
	assert.Contains(t, buf.String(), `"time":`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := Logger{Level: "debug", NoColor: true}.New(&buf)

	log.Debug().Msg("Downloading data")

	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "Downloading data")
	assert.Contains(t, buf.String(), "logger_test.go", "debug level records the caller")
}

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.InfoLevel, Logger{}.New(&buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Logger{Level: "loud"}.New(&buf).GetLevel())
}
