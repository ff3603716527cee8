package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pax/internal/adapters/cache"               //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/adapters/logger"              //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/adapters/shell"               //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/adapters/telemetry/progrock"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/adapters/watcher"             //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/adapters/workspace"           //nolint:depguard // Wired in app layer
	"go.trai.ch/pax/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the app with the collaborators the CLI needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			workspace.NodeID,
			shell.NodeID,
			cache.GateNodeID,
			progrock.NodeID,
			logger.NodeID,
			watcher.FactoryNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	ws, err := graft.Dep[ports.Workspace](ctx)
	if err != nil {
		return nil, err
	}

	eval, err := graft.Dep[ports.Evaluator](ctx)
	if err != nil {
		return nil, err
	}

	gate, err := graft.Dep[ports.CacheGate](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(ws, eval, gate, telemetry, log, newWatcher), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    application,
		Logger: log,
	}, nil
}
