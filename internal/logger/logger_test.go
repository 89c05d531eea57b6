package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l := WithField("run", "abc")
	l.Warn().Int("allocated", 1).Msg("couldn't allocate enough places")

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "abc", entry["run"])
	assert.Equal(t, float64(1), entry["allocated"])
	assert.Equal(t, "couldn't allocate enough places", entry["message"])
}
