package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, "prod", "").Info("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	New(&buf, "dev", "").Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{name: "dev logs debug", env: "dev", wantDebug: true, wantWarn: true},
		{name: "prod hides debug", env: "prod", wantDebug: false, wantWarn: true},
		{name: "override to error", env: "dev", level: "error", wantDebug: false, wantWarn: false},
		{name: "override to debug in prod", env: "prod", level: "DEBUG", wantDebug: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.env, tt.level)

			logger.Debug("debug line")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))

			logger.Warn("warn line")
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("warn line")))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
