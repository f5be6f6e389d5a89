package organizing

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/contre95/downsort/src/catalog"
)

const workerQueueSize = 64

// Debouncer collapses bursts of calls for one key into a single call.
type Debouncer interface {
	Process(key string, fn func())
	Stop()
}

// Dispatcher feeds watcher events to the Mover.
type Dispatcher struct {
	mover     *Mover
	settings  Settings
	debouncer Debouncer
	workers   int
	recorder  Recorder
}

// NewDispatcher creates a Dispatcher. A nil debouncer hands every event to
// the Mover as it arrives. workers below 1 is treated as 1.
func NewDispatcher(mover *Mover, debouncer Debouncer, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		mover:     mover,
		settings:  mover.Settings(),
		debouncer: debouncer,
		workers:   workers,
		recorder:  mover.recorder,
	}
}

// Run consumes events until ctx is cancelled or the channel is closed. Moves
// already handed to a worker finish before Run returns; debounced paths still
// waiting are dropped.
func (d *Dispatcher) Run(ctx context.Context, events <-chan catalog.FileEvent) error {
	queues := make([]chan string, d.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan string, workerQueueSize)
		wg.Add(1)
		go func(q <-chan string) {
			defer wg.Done()
			for path := range q {
				d.handle(path)
			}
		}(queues[i])
	}

	var (
		mu     sync.RWMutex
		closed bool
	)
	enqueue := func(path string) {
		mu.RLock()
		defer mu.RUnlock()
		if closed {
			return
		}
		select {
		case queues[d.shard(path)] <- path:
		case <-ctx.Done():
		}
	}
	shutdown := func() {
		if d.debouncer != nil {
			d.debouncer.Stop()
		}
		mu.Lock()
		closed = true
		for _, q := range queues {
			close(q)
		}
		mu.Unlock()
		wg.Wait()
	}

	slog.Info("Watching for new files", "root", d.settings.Root, "workers", d.workers)
	for {
		select {
		case <-ctx.Done():
			shutdown()
			slog.Info("Dispatcher stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				shutdown()
				slog.Info("Event stream closed, dispatcher stopped")
				return nil
			}
			d.recorder.EventReceived(string(ev.Kind))
			if !d.accepts(ev.Path) {
				continue
			}
			path := ev.Path
			if d.debouncer != nil {
				d.debouncer.Process(path, func() { enqueue(path) })
			} else {
				enqueue(path)
			}
		}
	}
}

// accepts filters out events the Mover would only skip.
func (d *Dispatcher) accepts(path string) bool {
	path = filepath.Clean(path)
	if path == d.settings.Root || d.settings.ignored(path) {
		return false
	}
	if !d.settings.ReclassifySorted && d.settings.inCategoryFolder(path) {
		slog.Debug("Ignoring event in category folder", "path", path)
		return false
	}
	return true
}

func (d *Dispatcher) shard(path string) int {
	if d.workers == 1 {
		return 0
	}
	return int(xxhash.Sum64String(path) % uint64(d.workers))
}

func (d *Dispatcher) handle(path string) {
	res, err := d.mover.Move(path)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		slog.Debug("File vanished before it could be moved", "path", path)
	case err != nil:
		// The mover already logged it and put it on the review list.
	case !res.Moved():
		slog.Debug("Left file in place", "path", path, "reason", res.Skipped)
	}
}
