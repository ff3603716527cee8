package cache

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/pax/internal/adapters/fs"
	"go.trai.ch/pax/internal/core/ports"
)

const (
	// StoreNodeID is the unique identifier for the cache Store Graft node.
	StoreNodeID graft.ID = "adapter.cache.store"
	// GateNodeID is the unique identifier for the cache Gate Graft node.
	GateNodeID graft.ID = "adapter.cache.gate"
)

// StorePath is the task cache location relative to the workspace root.
const StorePath = ".pax/task-cache.json"

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        StoreNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Store, error) {
			return NewStore(filepath.Join(".", StorePath))
		},
	})

	graft.Register(graft.Node[ports.CacheGate]{
		ID:        GateNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{StoreNodeID, fs.HasherNodeID, fs.ResolverNodeID},
		Run: func(ctx context.Context) (ports.CacheGate, error) {
			store, err := graft.Dep[*Store](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			return NewGate(store, hasher, resolver), nil
		},
	})
}
