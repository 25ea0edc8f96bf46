// Package config loads executor tuning parameters from a YAML file.
package config

import (
	"os"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ExecutorConfig holds the values an Executor can be tuned with at startup.
// A zero value means "let the executor pick its own default".
type ExecutorConfig struct {
	ThreadCount int `yaml:"threadCount"`
}

// Load reads an ExecutorConfig from a YAML file at path.
func Load(path string) (*ExecutorConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read executor config file")
	}

	var cfg ExecutorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, zerr.Wrap(err, "failed to parse executor config file")
	}

	return &cfg, nil
}
