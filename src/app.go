package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/features/config"
	"github.com/contre95/downsort/src/features/jobs"
	"github.com/contre95/downsort/src/features/metrics"
	"github.com/contre95/downsort/src/features/organizing"
	"github.com/contre95/downsort/src/infra/database"
	"github.com/contre95/downsort/src/infra/files"
	"github.com/contre95/downsort/src/infra/queue"
	"github.com/contre95/downsort/src/infra/watcher"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg        *config.Manager
	settings   organizing.Settings
	filter     *watcher.Filter
	collectors *metrics.Collectors
	history    catalog.History
	jobs       *jobs.Service
	mover      *organizing.Mover
	organizer  *organizing.Service
}

func newApp(cfg *config.Manager) (*app, error) {
	c := cfg.Get()

	filter, err := watcher.NewFilter(c.Watch.Ignore)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ignore pattern: %v", config.ErrStartup, err)
	}
	settings, err := organizing.NewSettings(c, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrStartup, err)
	}

	var history catalog.History = catalog.NopHistory{}
	if c.History.Enabled {
		db, err := database.NewSqliteHistory(c.History.Path)
		if err != nil {
			slog.Warn("Move history disabled, database unavailable", "path", c.History.Path, "error", err)
		} else {
			history = db
		}
	}

	collectors := metrics.NewCollectors()
	review := queue.NewInMemoryReviewList()
	jobService := jobs.NewService(&c.Jobs)

	mover := organizing.NewMover(settings, files.NewRelocator(c.Organize.Collision), history, review, collectors)
	organizer := organizing.NewService(mover, history, review, jobService)
	jobService.RegisterHandler(organizing.ScanJobType, jobs.NewBaseTaskHandler(organizing.NewScanTask(organizer)))

	return &app{
		cfg:        cfg,
		settings:   settings,
		filter:     filter,
		collectors: collectors,
		history:    history,
		jobs:       jobService,
		mover:      mover,
		organizer:  organizer,
	}, nil
}

// lock takes the single-instance lock on the watched root.
func (a *app) lock() (*files.InstanceLock, error) {
	lock, err := files.AcquireInstanceLock(a.settings.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrStartup, err)
	}
	return lock, nil
}

// drainJobs stops the job service and waits for running sweeps, so nothing
// touches the root or the history once the caller moves on.
func (a *app) drainJobs() {
	if err := a.jobs.Shutdown(context.Background()); err != nil {
		slog.Error("Failed to stop jobs", "error", err)
	}
}

// Close drains the jobs before closing the history they write to.
func (a *app) Close() error {
	a.drainJobs()
	return a.history.Close()
}
