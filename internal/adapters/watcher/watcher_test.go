package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pax/internal/adapters/watcher"
	"go.trai.ch/pax/internal/core/ports"
)

func nextEvent(t *testing.T, w ports.FileWatcher) ports.WatchEvent {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("watch stream failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch event")
	}
	return ports.WatchEvent{}
}

func TestFileWatcher_FallbackWatchesWorkdirForNewFiles(t *testing.T) {
	workdir := t.TempDir()

	w, err := watcher.New(workdir, []string{"*.txt"})
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, []string{workdir}, w.WatchedPaths())

	path := filepath.Join(workdir, "created.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	event := nextEvent(t, w)
	assert.True(t, event.Kind.Qualifies())
	assert.Contains(t, event.Paths, path)
}

func TestFileWatcher_WatchesDirectoriesRecursively(t *testing.T) {
	workdir := t.TempDir()
	nested := filepath.Join(workdir, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	w, err := watcher.New(workdir, []string{"src"})
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(nested, "util.py")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, ports.WatchCreate, event.Kind)
	assert.Contains(t, event.Paths, path)
}

func TestFileWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := watcher.New(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
