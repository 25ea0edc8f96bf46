package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the executor config Graft node.
const NodeID graft.ID = "adapter.executor_config"

// defaultFile is looked up relative to the process's working directory. Its
// absence is not an error: it just means the thread count falls back to the
// executor package's own default.
const defaultFile = "ergo.yaml"

func init() {
	graft.Register(graft.Node[*ExecutorConfig]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*ExecutorConfig, error) {
			if _, err := os.Stat(defaultFile); os.IsNotExist(err) {
				return &ExecutorConfig{}, nil
			}
			return Load(defaultFile)
		},
	})
}
