package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// LoadFile loads an HCL config file, applying defaults for anything left
// unset. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data, path)
}

// LoadBytes decodes HCL config from memory.
func LoadBytes(data []byte, filename string) (*Config, error) {
	// hclsimple picks the syntax from the extension.
	if !strings.HasSuffix(filename, ".hcl") && !strings.HasSuffix(filename, ".json") {
		filename += ".hcl"
	}
	var cfg Config
	if err := hclsimple.Decode(filename, data, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Listen == "" {
		cfg.Listen = def.Listen
	}
	if cfg.StateDir == "" {
		cfg.StateDir = def.StateDir
	}
	if cfg.FileMode == "" {
		cfg.FileMode = def.FileMode
	}
	if cfg.PollInterval == "" {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Log == nil {
		cfg.Log = def.Log
	}
}
