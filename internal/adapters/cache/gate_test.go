package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pax/internal/adapters/cache"
	"go.trai.ch/pax/internal/adapters/fs"
	"go.trai.ch/pax/internal/core/ports"
)

func newGate(t *testing.T) *cache.Gate {
	t.Helper()

	store, err := cache.NewStore(filepath.Join(t.TempDir(), "task-cache.json"))
	require.NoError(t, err)
	return cache.NewGate(store, fs.NewHasher(), fs.NewResolver())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testKey(workdir string) ports.CacheKey {
	return ports.CacheKey{
		TaskName:    "build",
		Environment: "default",
		Command:     "make build",
		WorkingDir:  workdir,
		Inputs:      []string{"*.txt"},
		LockDigest:  "abc123",
	}
}

func TestGate_SkipsAfterSave(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t)
	workdir := t.TempDir()
	writeFile(t, workdir, "input.txt", "v1")

	key := testKey(workdir)

	decision, err := gate.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, decision.Skip, "first check must be a miss")
	require.NotEmpty(t, decision.Fingerprint)

	require.NoError(t, gate.Save(ctx, key, decision))

	// Unchanged inputs skip on every subsequent check.
	for i := 0; i < 3; i++ {
		decision, err = gate.Check(ctx, key)
		require.NoError(t, err)
		assert.True(t, decision.Skip)
	}
}

func TestGate_AnyChangedFactorForcesRun(t *testing.T) {
	ctx := context.Background()

	type change struct {
		name   string
		mutate func(t *testing.T, key *ports.CacheKey, workdir string)
	}
	changes := []change{
		{"command", func(_ *testing.T, key *ports.CacheKey, _ string) {
			key.Command = "make rebuild"
		}},
		{"lock digest", func(_ *testing.T, key *ports.CacheKey, _ string) {
			key.LockDigest = "def456"
		}},
		{"input content", func(t *testing.T, _ *ports.CacheKey, workdir string) {
			writeFile(t, workdir, "input.txt", "v2")
		}},
		{"new matching file", func(t *testing.T, _ *ports.CacheKey, workdir string) {
			writeFile(t, workdir, "extra.txt", "v1")
		}},
	}

	for _, tc := range changes {
		t.Run(tc.name, func(t *testing.T) {
			gate := newGate(t)
			workdir := t.TempDir()
			writeFile(t, workdir, "input.txt", "v1")
			key := testKey(workdir)

			decision, err := gate.Check(ctx, key)
			require.NoError(t, err)
			require.NoError(t, gate.Save(ctx, key, decision))

			tc.mutate(t, &key, workdir)

			decision, err = gate.Check(ctx, key)
			require.NoError(t, err)
			assert.False(t, decision.Skip)
		})
	}
}

func TestGate_DirectoryInputHashesContainedFiles(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t)
	workdir := t.TempDir()

	srcDir := filepath.Join(workdir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "pkg"), 0o755))
	writeFile(t, srcDir, "main.py", "v1")
	writeFile(t, filepath.Join(srcDir, "pkg"), "util.py", "v1")

	key := testKey(workdir)
	key.Inputs = []string{"src"}

	decision, err := gate.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, decision.Skip)
	require.NoError(t, gate.Save(ctx, key, decision))

	decision, err = gate.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, decision.Skip)

	// A change anywhere below the directory invalidates the record.
	writeFile(t, filepath.Join(srcDir, "pkg"), "util.py", "v2")

	decision, err = gate.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, decision.Skip)
}

func TestGate_GlobMatchingDirectoryStillFingerprints(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t)
	workdir := t.TempDir()

	srcDir := filepath.Join(workdir, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	writeFile(t, srcDir, "main.py", "v1")

	key := testKey(workdir)
	// `src/**` matches the directory itself alongside its files.
	key.Inputs = []string{"src/**"}

	decision, err := gate.Check(ctx, key)
	require.NoError(t, err)
	require.NotEmpty(t, decision.Fingerprint)
}

func TestGate_CheckDoesNotMutateStore(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t)
	workdir := t.TempDir()
	writeFile(t, workdir, "input.txt", "v1")
	key := testKey(workdir)

	// Checking without saving never creates a record.
	for i := 0; i < 2; i++ {
		decision, err := gate.Check(ctx, key)
		require.NoError(t, err)
		assert.False(t, decision.Skip)
	}
}

func TestStore_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "task-cache.json")

	store, err := cache.NewStore(path)
	require.NoError(t, err)

	gate := cache.NewGate(store, fs.NewHasher(), fs.NewResolver())
	workdir := t.TempDir()
	writeFile(t, workdir, "input.txt", "v1")
	key := testKey(workdir)

	ctx := context.Background()
	decision, err := gate.Check(ctx, key)
	require.NoError(t, err)
	require.NoError(t, gate.Save(ctx, key, decision))

	reloaded, err := cache.NewStore(path)
	require.NoError(t, err)

	decision, err = cache.NewGate(reloaded, fs.NewHasher(), fs.NewResolver()).Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, decision.Skip)
}
