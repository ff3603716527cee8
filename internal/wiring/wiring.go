// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pax/internal/adapters/cache"
	_ "go.trai.ch/pax/internal/adapters/fs"
	_ "go.trai.ch/pax/internal/adapters/logger"
	_ "go.trai.ch/pax/internal/adapters/shell"
	_ "go.trai.ch/pax/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/pax/internal/adapters/watcher"
	_ "go.trai.ch/pax/internal/adapters/workspace"
	// Register app nodes.
	_ "go.trai.ch/pax/internal/app"
)
