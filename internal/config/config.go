// Package config defines the HCL configuration for the nfcond daemon.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"grimm.is/nfcond/internal/condition"
)

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the address for the HTTP control surface.
	Listen string `hcl:"listen,optional"`

	// StateDir is the parent directory for per-namespace condition mounts.
	StateDir string `hcl:"state_dir,optional"`

	// FileMode sets the permissions of rendered status files, octal string.
	FileMode string `hcl:"file_mode,optional"`

	// PollInterval is how often on-disk status files are checked for
	// operator edits. Go duration syntax.
	PollInterval string `hcl:"poll_interval,optional"`

	Log        *LogConfig     `hcl:"log,block"`
	Trigger    *TriggerConfig `hcl:"trigger,block"`
	Namespaces []Namespace    `hcl:"namespace,block"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	Level string `hcl:"level,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// TriggerConfig configures the remote-trigger gate. An empty password
// leaves the gate rejecting everything; an empty listen address disables
// the UDP listener.
type TriggerConfig struct {
	Listen   string `hcl:"listen,optional"`
	Password string `hcl:"password,optional"`
}

// Namespace declares a context to create at startup, with condition
// variables to pre-acquire so their endpoints exist before any rule does.
type Namespace struct {
	Name       string   `hcl:"name,label"`
	Conditions []string `hcl:"conditions,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:       "127.0.0.1:9977",
		StateDir:     "/var/lib/nfcond",
		FileMode:     "0644",
		PollInterval: "1s",
		Log:          &LogConfig{Level: "info"},
		Namespaces:   []Namespace{{Name: "default"}},
	}
}

// Validate checks the configuration for problems that would only surface
// later at runtime.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if _, err := c.Poll(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, ns := range c.Namespaces {
		if err := condition.ValidateName(ns.Name); err != nil {
			return fmt.Errorf("namespace %q: %w", ns.Name, err)
		}
		if seen[ns.Name] {
			return fmt.Errorf("namespace %q declared twice", ns.Name)
		}
		seen[ns.Name] = true
		for _, cond := range ns.Conditions {
			if err := condition.ValidateName(cond); err != nil {
				return fmt.Errorf("namespace %q condition %q: %w", ns.Name, cond, err)
			}
		}
	}
	return nil
}

// Mode parses FileMode into an os.FileMode.
func (c *Config) Mode() (os.FileMode, error) {
	if c.FileMode == "" {
		return 0o644, nil
	}
	n, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("file_mode %q: not an octal mode", c.FileMode)
	}
	return os.FileMode(n), nil
}

// Poll parses PollInterval.
func (c *Config) Poll() (time.Duration, error) {
	if c.PollInterval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("poll_interval %q: %v", c.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive")
	}
	return d, nil
}
