package organizing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/infra/watcher"
)

func runDispatcher(t *testing.T, d *Dispatcher, events <-chan catalog.FileEvent) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		done <- d.Run(ctx, events)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-finished:
		case <-time.After(3 * time.Second):
			t.Error("dispatcher did not stop")
		}
	})
	return cancel, done
}

func event(path string, kind catalog.FileEventKind) catalog.FileEvent {
	return catalog.FileEvent{Path: path, Kind: kind, Timestamp: time.Now()}
}

func TestDispatcherMovesCreatedFiles(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent, 8)
	runDispatcher(t, NewDispatcher(f.mover, nil, 1), events)

	events <- event(f.write(t, "a.pdf", "x"), catalog.FileCreated)
	waitUntil(t, "a.pdf in Documents", func() bool { return f.exists("Documents/a.pdf") })
}

func TestDispatcherCreateThenModifyMovesOnce(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent, 8)
	runDispatcher(t, NewDispatcher(f.mover, nil, 1), events)

	src := f.write(t, "a.pdf", "x")
	events <- event(src, catalog.FileCreated)
	events <- event(src, catalog.FileModified)
	marker := f.write(t, "marker.txt", "x")
	events <- event(marker, catalog.FileCreated)

	waitUntil(t, "marker moved", func() bool { return f.exists("Documents/marker.txt") })
	entries, _ := os.ReadDir(filepath.Join(f.root, "Documents"))
	pdfs := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".pdf" {
			pdfs++
		}
	}
	if pdfs != 1 {
		t.Fatalf("Documents holds %d pdfs, want 1", pdfs)
	}
	if len(f.review.GetAll()) != 0 {
		t.Fatalf("vanished file reached the review list: %v", f.review.GetAll())
	}
}

func TestDispatcherDebounceCollapsesBursts(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent, 16)
	runDispatcher(t, NewDispatcher(f.mover, watcher.NewDebouncer(30*time.Millisecond), 1), events)

	src := f.write(t, "big.zip", "x")
	events <- event(src, catalog.FileCreated)
	for i := 0; i < 5; i++ {
		events <- event(src, catalog.FileModified)
	}
	waitUntil(t, "big.zip archived", func() bool { return f.exists("Archives/big.zip") })
	time.Sleep(60 * time.Millisecond)
	if f.history.len() != 1 {
		t.Fatalf("history records = %d, want 1", f.history.len())
	}
}

func TestDispatcherIgnoresCategoryFoldersByDefault(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent, 8)
	runDispatcher(t, NewDispatcher(f.mover, nil, 1), events)

	misplaced := f.write(t, "Documents/photo.png", "x")
	events <- event(misplaced, catalog.FileCreated)
	nested := f.write(t, "sub/deep.pdf", "x")
	events <- event(nested, catalog.FileCreated)

	waitUntil(t, "nested file organized", func() bool { return f.exists("Documents/deep.pdf") })
	if !f.exists("Documents/photo.png") {
		t.Fatal("file inside a category folder was re-homed")
	}
}

func TestDispatcherReclassifiesWhenEnabled(t *testing.T) {
	f := newFixture(t, withReclassify())
	events := make(chan catalog.FileEvent, 8)
	runDispatcher(t, NewDispatcher(f.mover, nil, 1), events)

	events <- event(f.write(t, "Documents/photo.png", "x"), catalog.FileCreated)
	waitUntil(t, "photo re-homed", func() bool { return f.exists("Images/photo.png") })
}

func TestDispatcherShardsAcrossWorkers(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent, 64)
	runDispatcher(t, NewDispatcher(f.mover, nil, 4), events)

	for i := 0; i < 20; i++ {
		events <- event(f.write(t, fmt.Sprintf("file-%02d.txt", i), "x"), catalog.FileCreated)
	}
	waitUntil(t, "all files moved", func() bool { return f.history.len() == 20 })
}

func TestDispatcherStopsWhenEventsClose(t *testing.T) {
	f := newFixture(t)
	events := make(chan catalog.FileEvent)
	_, done := runDispatcher(t, NewDispatcher(f.mover, watcher.NewDebouncer(time.Hour), 1), events)

	close(events)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the event stream closed")
	}
}

func TestDispatcherWithRealWatcher(t *testing.T) {
	f := newFixture(t)
	filter, _ := watcher.NewFilter([]string{".downsort*"})
	w, err := watcher.NewWatcher(f.root, true, filter)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	runDispatcher(t, NewDispatcher(f.mover, watcher.NewDebouncer(20*time.Millisecond), 1), w.Events())

	f.write(t, "clip.mp4", "x")
	waitUntil(t, "clip in Videos", func() bool { return f.exists("Videos/clip.mp4") })
	if f.exists("clip.mp4") {
		t.Fatal("source still present")
	}
}
