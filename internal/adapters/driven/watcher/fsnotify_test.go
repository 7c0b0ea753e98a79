package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "input.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(watched, []byte("{}"), 0600))

	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := w.Watch(ctx, watched)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(other, []byte("{}"), 0600))
	require.NoError(t, os.WriteFile(watched, []byte(`{"a":1}`), 0600))

	select {
	case got := <-changes:
		assert.Equal(t, watched, got)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"n":1}`), 0600))
	}
	require.Eventually(t, func() bool { return len(changes) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 1, len(changes))
	assert.Equal(t, path, <-changes)
}

func TestWatcher_ChannelClosesWithContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.csv")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
