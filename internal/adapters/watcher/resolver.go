// Package watcher implements glob-aware file watching for task re-runs.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.trai.ch/pax/internal/adapters/fs"
	"golang.org/x/sync/errgroup"
)

// ResolveWatchPaths expands the input patterns into the set of concrete paths
// to watch. Patterns are evaluated independently and the produced paths are
// merged into one deduplicated set.
//
// A glob pattern resolves to its matches; with zero matches the working
// directory itself is watched so files created later are still observed. A
// literal path resolves to itself when it exists, otherwise to its nearest
// existing ancestor directory so a deleted-then-recreated path remains
// observable.
func ResolveWatchPaths(workdir string, patterns []string) ([]string, error) {
	resolver := fs.NewResolver()

	var (
		mu    sync.Mutex
		paths = make(map[string]struct{})
	)
	add := func(path string) {
		mu.Lock()
		paths[path] = struct{}{}
		mu.Unlock()
	}

	var g errgroup.Group
	for _, pattern := range patterns {
		g.Go(func() error {
			if fs.HasGlobMeta(pattern) {
				matches, err := resolver.ResolvePattern(workdir, pattern)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					add(workdir)
					return nil
				}
				for _, match := range matches {
					add(match)
				}
				return nil
			}

			path := pattern
			if !filepath.IsAbs(path) {
				path = filepath.Join(workdir, pattern)
			}
			add(nearestExisting(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(paths))
	for path := range paths {
		result = append(result, path)
	}
	sort.Strings(result)
	return result, nil
}

// nearestExisting returns path when it exists, otherwise the closest existing
// ancestor directory.
func nearestExisting(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
