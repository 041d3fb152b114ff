package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerationWatcherFiresOnSymlinkSwap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "gen-a"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "gen-b"), 0755))
	require.NoError(t, os.Symlink("gen-a", filepath.Join(dir, "current")))

	w, err := NewGenerationWatcher(dir)
	require.NoError(t, err)
	defer w.Stop()

	fired := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))

	// Give the watcher a moment to register the directory before swapping.
	time.Sleep(50 * time.Millisecond)

	tmp := filepath.Join(dir, "current.tmp")
	require.NoError(t, os.Symlink("gen-b", tmp))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "current")))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected onChange to fire after current symlink swap")
	}
}

func TestGenerationWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewGenerationWatcher(dir)
	require.NoError(t, err)
	defer w.Stop()

	fired := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen-a-meta.json"), []byte("{}"), 0644))

	select {
	case <-fired:
		t.Fatal("did not expect onChange for an unrelated file write")
	case <-time.After(400 * time.Millisecond):
	}
}
