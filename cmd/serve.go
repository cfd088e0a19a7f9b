// Package cmd implements the nfcond CLI subcommands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/nfcond/internal/api"
	"grimm.is/nfcond/internal/condfs"
	"grimm.is/nfcond/internal/condition"
	"grimm.is/nfcond/internal/config"
	"grimm.is/nfcond/internal/events"
	"grimm.is/nfcond/internal/logging"
	"grimm.is/nfcond/internal/namespace"
	"grimm.is/nfcond/internal/trigger"
)

// RunServe runs the nfcond daemon: per-namespace registries with on-disk
// mounts, the HTTP control surface, and the trigger gate.
func RunServe(configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level: logging.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	})
	logging.SetDefault(logger)

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}
	poll, err := cfg.Poll()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()

	// Each context mounts under <state_dir>/<namespace>/ and gets a
	// polling watcher for operator file edits.
	manager := namespace.NewManager(namespace.Options{
		Logger: logger,
		Hub:    hub,
		NewMount: func(name string) (condition.Mount, error) {
			dd, err := condfs.NewDiskDir(cfg.StateDir, name, mode, logger)
			if err != nil {
				return nil, err
			}
			go dd.Watch(ctx, poll)
			return dd, nil
		},
	})
	defer manager.Close()

	// Pre-create configured namespaces and pin their declared conditions
	// so endpoints exist before any rule references them. The daemon holds
	// one reference per pinned condition until shutdown.
	var pinned []func()
	defer func() {
		for _, release := range pinned {
			release()
		}
	}()
	for _, ns := range cfg.Namespaces {
		reg, err := manager.Create(ns.Name)
		if err != nil {
			return fmt.Errorf("namespace %q: %w", ns.Name, err)
		}
		for _, cond := range ns.Conditions {
			h, err := reg.Acquire(cond)
			if err != nil {
				return fmt.Errorf("namespace %q condition %q: %w", ns.Name, cond, err)
			}
			r, hh := reg, h
			pinned = append(pinned, func() { r.Release(hh) })
		}
	}

	// Trigger gate: command dispatch stays with the host; the daemon
	// publishes accepted commands on the event bus. The UDP listener is
	// the userspace stand-in for the datagram packet path.
	if cfg.Trigger != nil && cfg.Trigger.Listen != "" {
		gate := trigger.NewGate(cfg.Trigger.Password, func(c byte) {
			logger.Info("trigger command accepted", "command", string(c))
			hub.Publish(events.Event{
				Type:   events.EventTriggerAccepted,
				Source: "trigger",
				Data:   events.TriggerData{Command: string(c)},
			})
		}, logger)
		go func() {
			if err := trigger.Serve(ctx, gate, cfg.Trigger.Listen); err != nil {
				logger.Error("trigger listener failed", "error", err)
			}
		}()
	}

	server := api.NewServer(api.ServerOptions{
		Listen:  cfg.Listen,
		Manager: manager,
		Hub:     hub,
		Logger:  logger,
	})

	logger.Info("nfcond starting", "listen", cfg.Listen, "state_dir", cfg.StateDir,
		"namespaces", len(cfg.Namespaces))
	return server.ListenAndServe(ctx)
}
