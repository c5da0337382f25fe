package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder(t *testing.T) {
	rec, logger := NewLogRecorder()

	logger.With("grid", "g1").Debug("cell committed", "row", 2)
	logger.Warn("slow save")

	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelDebug, records[0].Level)
	assert.Equal(t, map[string]any{"grid": "g1", "row": int64(2)}, records[0].Attrs)

	got, ok := rec.Find("slow save")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, got.Level)

	_, ok = rec.Find("missing")
	assert.False(t, ok)
}
