package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
		wantErr  bool
	}{
		{in: "", expected: slog.LevelInfo},
		{in: "DEBUG", expected: slog.LevelDebug},
		{in: "warning", expected: slog.LevelWarn},
		{in: " error ", expected: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "timecard.log")
	require.NoError(t, Init(Options{Level: "info", File: path}))
	t.Cleanup(func() {
		require.NoError(t, Init(Options{File: "-"}))
	})

	Debug("hidden")
	Info("checked out", "project", "alpha")
	Warn("clock moved backwards", "project", "alpha")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "checked out", entry["msg"])
	assert.Equal(t, "alpha", entry["project"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "WARN", entry["level"])
}

func TestFilePathHonoursXDGStateHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	path, err := FilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timecard", "timecard.log"), path)
}
