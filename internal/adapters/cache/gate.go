package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheGate = (*Gate)(nil)

// Gate decides whether a task can be skipped by comparing a content
// fingerprint against the stored record. The fingerprint covers the resolved
// command text, the working directory, the environment identity, the
// lock-file digest and the contents of all declared inputs. A directory
// input is fingerprinted through the files below it.
type Gate struct {
	store    *Store
	hasher   ports.Hasher
	resolver ports.InputResolver
}

// NewGate creates a Gate over the given store, hasher and input resolver.
func NewGate(store *Store, hasher ports.Hasher, resolver ports.InputResolver) *Gate {
	return &Gate{
		store:    store,
		hasher:   hasher,
		resolver: resolver,
	}
}

// Check computes the fresh fingerprint for the key and compares it to the
// stored one. Equal fingerprints yield a Skip decision; anything else is a
// Run decision carrying the new fingerprint for later persistence.
func (g *Gate) Check(ctx context.Context, key ports.CacheKey) (ports.CacheDecision, error) {
	fingerprint, err := g.fingerprint(ctx, key)
	if err != nil {
		return ports.CacheDecision{}, err
	}

	record, err := g.store.Get(key.Environment, key.TaskName)
	if err != nil {
		return ports.CacheDecision{}, err
	}

	if record != nil && record.Fingerprint == fingerprint {
		return ports.CacheDecision{Skip: true, Fingerprint: fingerprint}, nil
	}

	return ports.CacheDecision{Skip: false, Fingerprint: fingerprint}, nil
}

// Save persists the decision's fingerprint for the key. The run loop calls it
// only after an exit-code-zero, non-dry-run execution.
func (g *Gate) Save(_ context.Context, key ports.CacheKey, decision ports.CacheDecision) error {
	return g.store.Put(domain.CacheRecord{
		TaskName:    key.TaskName,
		Environment: key.Environment,
		Fingerprint: decision.Fingerprint,
		UpdatedAt:   time.Now().Unix(),
	})
}

func (g *Gate) fingerprint(ctx context.Context, key ports.CacheKey) (string, error) {
	hasher := xxhash.New()

	writeField := func(s string) {
		_, _ = hasher.WriteString(s)
		_, _ = hasher.Write([]byte{0})
	}

	writeField(key.TaskName)
	writeField(key.Environment)
	writeField(key.Command)
	writeField(key.WorkingDir)
	writeField(key.LockDigest)

	for _, pattern := range key.Inputs {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		matches, err := g.resolver.ResolvePattern(key.WorkingDir, pattern)
		if err != nil {
			return "", err
		}

		writeField(pattern)
		for _, match := range matches {
			if err := g.hashInput(hasher, match); err != nil {
				return "", err
			}
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashInput folds one resolved input into the fingerprint. Files contribute
// their path and content hash; a directory contributes the files below it.
func (g *Gate) hashInput(hasher *xxhash.Digest, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat input"), "path", path)
	}

	if !info.IsDir() {
		return g.hashFile(hasher, path)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk input directory"), "path", p)
		}
		if d.IsDir() {
			return nil
		}
		return g.hashFile(hasher, p)
	})
}

func (g *Gate) hashFile(hasher *xxhash.Digest, path string) error {
	_, _ = hasher.WriteString(path)
	_, _ = hasher.Write([]byte{0})

	fileHash, err := g.hasher.ComputeFileHash(path)
	if err != nil {
		return err
	}
	return binary.Write(hasher, binary.LittleEndian, fileHash)
}
