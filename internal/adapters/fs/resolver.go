package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver expands input patterns into concrete file paths. Patterns may use
// doublestar globs (`src/**/*.py`); a pattern without metacharacters is
// treated as a literal path.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// HasGlobMeta reports whether the pattern contains glob metacharacters.
func HasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ResolvePattern expands one pattern relative to dir and returns the sorted
// matches. A literal path resolves to itself when it exists. Zero matches is
// a valid result, not an error.
func (r *Resolver) ResolvePattern(dir, pattern string) ([]string, error) {
	path := pattern
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, pattern)
	}

	if !HasGlobMeta(pattern) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat input"), "path", path)
		}
		return []string{path}, nil
	}

	matches, err := doublestar.FilepathGlob(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrWatchPattern, err.Error()), "pattern", pattern)
	}

	sort.Strings(matches)
	return matches, nil
}
