package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/downsort/src/features/config"
	"github.com/contre95/downsort/src/features/hosting"
	"github.com/contre95/downsort/src/features/organizing"
	"github.com/contre95/downsort/src/infra/watcher"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sort the folder, then keep watching it (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), ctx)
		},
	}
}

// runDaemon sorts what is already in the root, then moves new files as they
// appear until SIGINT or SIGTERM.
func runDaemon(parent context.Context, cc *commandContext) error {
	manager, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	cfg := manager.Get()

	if err := manager.EnsureDirectories(); err != nil {
		return err
	}
	a, err := newApp(manager)
	if err != nil {
		return err
	}
	defer a.Close()

	lock, err := a.lock()
	if err != nil {
		return err
	}
	defer lock.Release()
	// Runs before the lock is released: sweeps started over HTTP or Telegram
	// finish their current file first.
	defer a.drainJobs()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscribe before the initial scan so files landing during the scan are
	// buffered instead of missed.
	var w *watcher.Watcher
	if cfg.Watch.Enabled {
		w, err = watcher.NewWatcher(a.settings.Root, cfg.Watch.Recursive, a.filter)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrStartup, err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("%w: %v", config.ErrStartup, err)
		}
		defer w.Stop()
	}

	if cfg.Server.Enabled {
		server := hosting.NewServer(manager, a.organizer, a.jobs, a.collectors)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("HTTP server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("Failed to shut down HTTP server", "error", err)
			}
		}()
	}

	if cfg.Telegram.Enabled {
		bot, err := hosting.NewTelegramBot(manager, a.organizer, a.jobs)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go bot.Start()
			defer bot.Stop()
		}
	}

	if _, err := a.organizer.Scan(ctx); err != nil {
		slog.Warn("Initial scan finished with errors", "error", err)
	}

	if w == nil {
		if !cfg.Server.Enabled && !cfg.Telegram.Enabled {
			slog.Info("Watching disabled, nothing left to do")
			return nil
		}
		slog.Info("Watching disabled, serving until interrupted")
		<-ctx.Done()
		return nil
	}

	var debouncer organizing.Debouncer
	if cfg.Watch.DebounceMs > 0 {
		debouncer = watcher.NewDebouncer(time.Duration(cfg.Watch.DebounceMs) * time.Millisecond)
	}
	dispatcher := organizing.NewDispatcher(a.mover, debouncer, cfg.Watch.Workers)

	a.organizer.SetWatching(true)
	err = dispatcher.Run(ctx, w.Events())
	a.organizer.SetWatching(false)
	slog.Info("Shutting down")
	return err
}
