package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan string, want int, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case p, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, p)
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", want, len(got))
		}
	}
	return got
}

func TestStartWatcher_EmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Root: dir}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	path := filepath.Join(dir, "session.txt")
	require.NoError(t, os.WriteFile(path, []byte("Client: Jane Doe"), 0o644))

	got := collect(t, evCh, 1, 3*time.Second)
	assert.Equal(t, path, got[0])
}

func TestStartWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Root: dir}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{1}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("x"), 0o644))

	got := collect(t, evCh, 1, 3*time.Second)
	assert.Equal(t, "note.md", filepath.Base(got[0]))
}

func TestStartWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "already-there.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("%PDF"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Root: dir, InitialScan: true}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	got := collect(t, evCh, 1, 3*time.Second)
	assert.Equal(t, existing, got[0])
}

func TestStartWatcher_RequiresRoot(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
