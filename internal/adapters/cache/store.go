// Package cache implements the fingerprint-based cache gate and its on-disk
// store.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store persists cache records in a flat JSON file, keyed by
// "<environment>/<task>".
type Store struct {
	path    string
	mu      sync.RWMutex
	records map[string]domain.CacheRecord
}

// NewStore creates a Store backed by the file at the given path. A missing
// file is an empty store.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    filepath.Clean(path),
		records: make(map[string]domain.CacheRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func recordKey(environment, task string) string {
	return environment + "/" + task
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(domain.ErrCacheRead, err.Error())
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return zerr.Wrap(domain.ErrCacheRead, err.Error())
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrCacheWrite, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.Wrap(domain.ErrCacheWrite, err.Error())
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(domain.ErrCacheWrite, err.Error())
	}

	return nil
}

// Get retrieves the record for a task in an environment. A missing record
// returns nil without error.
func (s *Store) Get(environment, task string) (*domain.CacheRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordKey(environment, task)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record and flushes the store to disk.
func (s *Store) Put(record domain.CacheRecord) error {
	s.mu.Lock()
	s.records[recordKey(record.Environment, record.TaskName)] = record
	s.mu.Unlock()

	return s.save()
}
