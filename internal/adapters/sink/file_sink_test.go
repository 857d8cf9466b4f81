package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

func TestFileSinkDeliver(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileSink(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Deliver(context.Background(), sampleBatch()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var batch core.ResultBatch
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.Equal(t, "2026-08-29T12:00:00Z", batch.GeneratedAt)
	require.Len(t, batch.Subscriptions, 1)
	assert.Equal(t, "Netflix", batch.Subscriptions[0].ServiceName)
}

func TestFileSinkCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	_, err := NewFileSink(dir, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
