// Package executornode registers the Graft node that assembles a fully
// wired *executor.Executor from the adapter nodes.
package executornode

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/ergo/executor"
	"go.trai.ch/ergo/internal/adapters/clock"
	"go.trai.ch/ergo/internal/adapters/config"
	"go.trai.ch/ergo/internal/adapters/logger"
	"go.trai.ch/ergo/internal/adapters/telemetry"
	"go.trai.ch/ergo/internal/core/ports"
)

// NodeID is the unique identifier for the assembled Executor Graft node.
const NodeID graft.ID = "executor.main"

func init() {
	graft.Register(graft.Node[*executor.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			clock.NodeID,
			config.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: run,
	})
}

func run(ctx context.Context) (*executor.Executor, error) {
	cl, err := graft.Dep[ports.Clock](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*config.ExecutorConfig](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	opts := []executor.Option{
		executor.WithClock(cl),
		executor.WithLogger(log),
		executor.WithTracer(tracer),
	}
	if cfg.ThreadCount > 0 {
		opts = append(opts, executor.WithThreadCount(cfg.ThreadCount))
	}

	return executor.New(opts...), nil
}
