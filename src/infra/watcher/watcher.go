package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/fsnotify/fsnotify"
)

const eventBuffer = 1024

// Watcher monitors the watched root and emits created/modified events for
// files. Directory, chmod, remove and rename notifications are not emitted.
type Watcher struct {
	watcher   *fsnotify.Watcher
	root      string
	recursive bool
	filter    *Filter
	events    chan catalog.FileEvent

	mu       sync.Mutex
	watching map[string]bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a new file system watcher for root. A nil filter ignores
// nothing.
func NewWatcher(root string, recursive bool, filter *Filter) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   w,
		root:      filepath.Clean(root),
		recursive: recursive,
		filter:    filter,
		events:    make(chan catalog.FileEvent, eventBuffer),
		watching:  make(map[string]bool),
		done:      make(chan struct{}),
	}, nil
}

// Start subscribes to the root (and its subdirectories when recursive) and
// begins forwarding events. Events are buffered until someone reads Events().
func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("Starting file watcher", "path", w.root, "recursive", w.recursive)

	if err := w.addPath(w.root); err != nil {
		return err
	}
	if w.recursive {
		w.addDirectoryRecursive(ctx, w.root, false)
	}

	w.wg.Add(1)
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully", "directories", w.WatchCount())
	return nil
}

// Events returns the event stream. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan catalog.FileEvent {
	return w.events
}

// WatchCount returns the number of directories currently subscribed.
func (w *Watcher) WatchCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watching)
}

// Stop stops the file watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("Stopping file watcher")
		close(w.done)
		if err := w.watcher.Close(); err != nil {
			slog.Warn("Closing fsnotify watcher failed", "error", err)
		}
		w.wg.Wait()
	})
}

func (w *Watcher) addPath(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watching[dir] = true
	slog.Debug("Watching path", "path", dir)
	return nil
}

// addDirectoryRecursive subscribes every directory below dir. With emitFiles
// set, files already present are reported as created: they may have landed
// before the subscription existed.
func (w *Watcher) addDirectoryRecursive(ctx context.Context, dir string, emitFiles bool) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != dir && w.filter.IsIgnored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := w.addPath(path); err != nil {
				slog.Warn("Error adding directory to watcher", "path", path, "error", err)
			}
			return nil
		}
		if emitFiles && d.Type().IsRegular() {
			w.emit(ctx, catalog.FileEvent{Path: path, Kind: catalog.FileCreated, Timestamp: time.Now()})
		}
		return nil
	})
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				slog.Warn("File watcher queue overflowed, some events were lost; the next scan will pick them up", "error", err)
				continue
			}
			slog.Error("File watcher error", "error", err)

		case <-w.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if w.filter.IsIgnored(event.Name) {
		return
	}

	var kind catalog.FileEventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = catalog.FileCreated
	case event.Has(fsnotify.Write):
		kind = catalog.FileModified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.forget(event.Name)
		return
	default:
		return
	}

	info, err := os.Lstat(event.Name)
	if err == nil && info.IsDir() {
		if kind == catalog.FileCreated && w.recursive {
			w.addDirectoryRecursive(ctx, event.Name, true)
		}
		return
	}

	w.emit(ctx, catalog.FileEvent{Path: event.Name, Kind: kind, Timestamp: time.Now()})
}

// emit blocks until the event is taken or the watcher stops; events are never
// dropped silently.
func (w *Watcher) emit(ctx context.Context, event catalog.FileEvent) {
	select {
	case w.events <- event:
	case <-w.done:
	case <-ctx.Done():
	}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching[path] {
		delete(w.watching, path)
	}
}
