// Package wiring registers every Graft node this module provides. Importing
// it for side effects is enough to make the whole dependency graph
// resolvable through graft.ExecuteFor.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ergo/internal/adapters/clock"
	_ "go.trai.ch/ergo/internal/adapters/config"
	_ "go.trai.ch/ergo/internal/adapters/logger"
	_ "go.trai.ch/ergo/internal/adapters/telemetry"
	// Register the assembled executor node.
	_ "go.trai.ch/ergo/internal/wiring/executornode"
)
