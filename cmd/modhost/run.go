// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/modhost/modhost/internal/callback"
	"github.com/modhost/modhost/internal/config"
	"github.com/modhost/modhost/internal/logging"
	"github.com/modhost/modhost/internal/luahost"
	"github.com/modhost/modhost/internal/observability"
	"github.com/modhost/modhost/internal/script"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the script host",
		Long: `Run the script host: create the configured callbacks, load every
script from the scripts directory, and drive the tick loop until the
process is signalled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("scripts_dir", defaults.ScriptsDir, "directory scanned for scripts")
	cmd.Flags().String("metrics_addr", defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log_format", defaults.LogFormat, "log format (json or text)")
	cmd.Flags().String("log_level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().Duration("tick_interval", defaults.TickInterval, "tick loop period")
	cmd.Flags().Bool("print_callbacks", false, "log the managed callbacks after startup")

	return cmd
}

func runHost(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.SetDefault("modhost", version, cfg.LogFormat, cfg.LogLevel)

	slog.Info("starting script host",
		"scripts_dir", cfg.ScriptsDir,
		"tick_interval", cfg.TickInterval,
		"callbacks", cfg.Callbacks,
	)

	// The registry lives for the whole process: created here, torn down
	// unconditionally on the way out.
	registry := callback.NewRegistry(func() callback.Context {
		return script.NewContext()
	})
	defer registry.ClearAllCallbacks()

	for _, name := range cfg.Callbacks {
		registry.CreateCallback(name)
	}

	// Pre/post phases around every tick dispatch.
	tickPair := callback.NewPair(registry, "")
	defer tickPair.Close()

	host := luahost.NewHost(registry)
	defer func() {
		if err := host.Close(context.Background()); err != nil {
			logging.LogError(slog.Default(), "failed to close script host", err)
		}
	}()

	if err := host.LoadAll(ctx, cfg.ScriptsDir); err != nil {
		return err
	}
	slog.Info("scripts loaded", "scripts", host.Scripts())

	var obs *observability.Server
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, nil)
		if _, err := obs.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(shutdownCtx); err != nil {
				logging.LogError(slog.Default(), "failed to stop observability server", err)
			}
		}()
	}

	registry.PrintCallbackDebug("")

	runTickLoop(ctx, registry, tickPair, cfg.TickInterval)

	slog.Info("script host stopped")
	return nil
}

// runTickLoop drives the host's built-in tick dispatch: pre phase, then the
// "tick" callback with the tick number as its only argument, then the post
// phase. Everything runs on this goroutine; listeners own the loop until
// they return.
func runTickLoop(ctx context.Context, registry *callback.Registry, pair *callback.Pair, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			pair.Pre().Execute(true)

			if cb := registry.FindCallback("tick"); cb != nil {
				if sc, ok := cb.Context().(*script.Context); ok {
					sc.PushArg(tick)
				}
				cb.Execute(true)
			}

			pair.Post().Execute(true)
		}
	}
}
