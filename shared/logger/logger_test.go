package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTo(t *testing.T) {
	defer Initialize("info", false)

	t.Run("json with level filter", func(t *testing.T) {
		var buf bytes.Buffer
		InitializeTo(&buf, "warn", true)

		Log.Info("dropped")
		Component("store").Warn("kept", "board", "b")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "store", entry["component"])
		assert.Equal(t, "b", entry["board"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		InitializeTo(&buf, "debug", false)

		Log.Debug("hello")

		assert.Contains(t, buf.String(), "msg=hello")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("Debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("nonsense").String())
}
