package organizing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/infra/files"
	"github.com/contre95/downsort/src/infra/watcher"
)

type fakeReview struct {
	mu    sync.Mutex
	items map[string]ReviewItem
}

func newFakeReview() *fakeReview {
	return &fakeReview{items: make(map[string]ReviewItem)}
}

func (f *fakeReview) Add(item ReviewItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.Attempts = f.items[item.Path].Attempts + 1
	f.items[item.Path] = item
	return nil
}

func (f *fakeReview) Get(path string) (ReviewItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[path]
	return item, ok
}

func (f *fakeReview) GetAll() map[string]ReviewItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]ReviewItem, len(f.items))
	for k, v := range f.items {
		out[k] = v
	}
	return out
}

func (f *fakeReview) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[path]; !ok {
		return ErrNotInReview
	}
	delete(f.items, path)
	return nil
}

func (f *fakeReview) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]ReviewItem)
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []catalog.MoveRecord
	err     error
}

func (f *fakeHistory) RecordMove(_ context.Context, r catalog.MoveRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeHistory) RecentMoves(_ context.Context, limit int) ([]catalog.MoveRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.MoveRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeHistory) CountByCategory(context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range f.records {
		counts[r.Category]++
	}
	return counts, nil
}

func (f *fakeHistory) Close() error { return nil }

func (f *fakeHistory) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// failingRelocator fails every move with an I/O error until healed.
type failingRelocator struct {
	mu     sync.Mutex
	healed bool
	next   Relocator
}

func (f *failingRelocator) Relocate(src, dir string) (string, bool, error) {
	f.mu.Lock()
	healed := f.healed
	f.mu.Unlock()
	if !healed {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, errors.New("read-only file system"))
	}
	return f.next.Relocate(src, dir)
}

func (f *failingRelocator) heal() {
	f.mu.Lock()
	f.healed = true
	f.mu.Unlock()
}

// blockingRelocator holds the first move until released.
type blockingRelocator struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	next    Relocator
}

func newBlockingRelocator(next Relocator) *blockingRelocator {
	return &blockingRelocator{entered: make(chan struct{}), release: make(chan struct{}), next: next}
}

func (b *blockingRelocator) Relocate(src, dir string) (string, bool, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.next.Relocate(src, dir)
}

type fixture struct {
	root     string
	settings Settings
	mover    *Mover
	history  *fakeHistory
	review   *fakeReview
}

type fixtureOption func(*Settings)

func withCollision(policy string) fixtureOption {
	return func(s *Settings) { s.Collision = policy }
}

func withReclassify() fixtureOption {
	return func(s *Settings) { s.ReclassifySorted = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	root := t.TempDir()
	filter, err := watcher.NewFilter([]string{".downsort*", "*.part", "*.crdownload"})
	if err != nil {
		t.Fatal(err)
	}
	settings := Settings{
		Root:      root,
		Table:     catalog.DefaultTable(),
		Collision: "rename",
		Ignore:    filter,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	for _, name := range settings.Table.Names() {
		if err := os.MkdirAll(filepath.Join(root, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	history := &fakeHistory{}
	review := newFakeReview()
	return &fixture{
		root:     root,
		settings: settings,
		mover:    NewMover(settings, files.NewRelocator(settings.Collision), history, review, nil),
		history:  history,
		review:   review,
	}
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (f *fixture) exists(rel string) bool {
	_, err := os.Lstat(filepath.Join(f.root, rel))
	return err == nil
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
