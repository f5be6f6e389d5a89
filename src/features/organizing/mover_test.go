package organizing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/infra/files"
)

func TestMovePlacesFileByExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.pdf", "Documents/report.pdf"},
		{"foo.JPG", "Images/foo.JPG"},
		{"song.mp3", "Audio/song.mp3"},
		{"backup.tar.gz", "Archives/backup.tar.gz"},
		{"script.sh", "Executables/script.sh"},
		{"b.unknownext", "Others/b.unknownext"},
		{"README", "Others/README"},
		{".env", "Others/.env"},
		{".jpg", "Others/.jpg"},
		{"..png", "Others/..png"},
		{".cover.png", "Images/.cover.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			src := f.write(t, tt.name, "data")

			res, err := f.mover.Move(src)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			if !res.Moved() {
				t.Fatalf("not moved: %+v", res)
			}
			if res.Destination != filepath.Join(f.root, tt.want) {
				t.Errorf("destination = %s, want %s", res.Destination, tt.want)
			}
			if !f.exists(tt.want) || f.exists(tt.name) {
				t.Errorf("file not relocated to %s", tt.want)
			}
		})
	}
}

func TestMoveRecordsHistory(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "a.pdf", "12345")
	if _, err := f.mover.Move(src); err != nil {
		t.Fatal(err)
	}
	if f.history.len() != 1 {
		t.Fatalf("history records = %d", f.history.len())
	}
	rec := f.history.records[0]
	if rec.Source != src || rec.Category != "Documents" || rec.Size != 5 || rec.ID == "" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestMoveHistoryFailureDoesNotFailMove(t *testing.T) {
	f := newFixture(t)
	f.history.err = errors.New("database is locked")
	src := f.write(t, "a.pdf", "x")
	res, err := f.mover.Move(src)
	if err != nil || !res.Moved() {
		t.Fatalf("Move = %+v, %v", res, err)
	}
}

func TestMoveSkipsDirectoriesAndSpecialFiles(t *testing.T) {
	f := newFixture(t)
	if err := os.Mkdir(filepath.Join(f.root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	res, err := f.mover.Move(filepath.Join(f.root, "sub"))
	if err != nil || res.Skipped != SkipDirectory {
		t.Fatalf("directory: %+v, %v", res, err)
	}
	if !f.exists("sub") {
		t.Fatal("directory was moved")
	}

	target := f.write(t, "sub/target.txt", "x")
	link := filepath.Join(f.root, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	res, err = f.mover.Move(link)
	if err != nil || res.Skipped != SkipNotRegular {
		t.Fatalf("symlink: %+v, %v", res, err)
	}
}

func TestMoveSkipsIgnoredAndOwnFiles(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"movie.mkv.part", "setup.exe.crdownload", files.LockFileName} {
		src := f.write(t, name, "x")
		res, err := f.mover.Move(src)
		if err != nil || res.Skipped != SkipIgnored {
			t.Errorf("%s: %+v, %v", name, res, err)
		}
		if !f.exists(name) {
			t.Errorf("%s was moved", name)
		}
	}

	// Own files stay put even when the user's ignore list drops the pattern.
	f.settings.Ignore = nil
	mover := NewMover(f.settings, files.NewRelocator("rename"), nil, nil, nil)
	src := f.write(t, ".downsort-1234.tmp", "x")
	if res, _ := mover.Move(src); res.Skipped != SkipIgnored {
		t.Errorf("temp file: %+v", res)
	}
}

func TestMoveAlreadySorted(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "Documents/a.pdf", "x")
	res, err := f.mover.Move(src)
	if err != nil || res.Skipped != SkipAlreadySorted {
		t.Fatalf("Move = %+v, %v", res, err)
	}
}

func TestMoveRehomesMisplacedFile(t *testing.T) {
	f := newFixture(t)
	src := f.write(t, "Documents/photo.png", "x")
	res, err := f.mover.Move(src)
	if err != nil || !res.Moved() {
		t.Fatalf("Move = %+v, %v", res, err)
	}
	if !f.exists("Images/photo.png") {
		t.Fatal("file not re-homed into Images")
	}
}

func TestMoveMissingFileIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.mover.Move(filepath.Join(f.root, "ghost.pdf"))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(f.review.GetAll()) != 0 {
		t.Fatal("missing files must not be queued for review")
	}
}

func TestMoveCollisionRename(t *testing.T) {
	f := newFixture(t)
	f.write(t, "Documents/a.pdf", "old")
	src := f.write(t, "a.pdf", "new")

	res, err := f.mover.Move(src)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Renamed || filepath.Base(res.Destination) != "a (1).pdf" {
		t.Fatalf("unexpected result %+v", res)
	}
	old, _ := os.ReadFile(filepath.Join(f.root, "Documents", "a.pdf"))
	if string(old) != "old" {
		t.Fatal("existing destination was overwritten")
	}
}

func TestMoveCollisionSkip(t *testing.T) {
	f := newFixture(t, withCollision("skip"))
	f.write(t, "Documents/a.pdf", "old")
	src := f.write(t, "a.pdf", "new")

	_, err := f.mover.Move(src)
	if !errors.Is(err, catalog.ErrCollision) {
		t.Fatalf("err = %v, want ErrCollision", err)
	}
	if !f.exists("a.pdf") {
		t.Fatal("source must stay in place")
	}
	item, ok := f.review.GetAll()[src]
	if !ok || item.Kind != catalog.KindCollision {
		t.Fatalf("review list = %v", f.review.GetAll())
	}
}

func TestMoveIOErrorQueuedThenCleared(t *testing.T) {
	f := newFixture(t)
	relocator := &failingRelocator{next: files.NewRelocator("rename")}
	mover := NewMover(f.settings, relocator, nil, f.review, nil)
	src := f.write(t, "a.zip", "x")

	_, err := mover.Move(src)
	if !errors.Is(err, catalog.ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
	if _, err := mover.Move(src); err == nil {
		t.Fatal("expected second failure")
	}
	if got := f.review.GetAll()[src].Attempts; got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}

	relocator.heal()
	if _, err := mover.Move(src); err != nil {
		t.Fatalf("Move after heal: %v", err)
	}
	if len(f.review.GetAll()) != 0 {
		t.Fatal("successful move must clear the review entry")
	}
}

// leavingRelocator copies like a cross-device move whose source cannot be
// removed afterwards.
type leavingRelocator struct{}

func (leavingRelocator) Relocate(src, dir string) (string, bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}
	me := catalog.NewMoveError(catalog.KindIO, src, errors.New("operation not permitted"))
	me.Destination = dst
	return dst, false, me
}

func TestMoveSourceLeftAfterCopyIsNotCopiedAgain(t *testing.T) {
	f := newFixture(t)
	f.mover = NewMover(f.settings, leavingRelocator{}, f.history, f.review, nil)
	src := f.write(t, "a.pdf", "data")

	res, err := f.mover.Move(src)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Moved() || res.Destination != filepath.Join(f.root, "Documents", "a.pdf") {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.history.len() != 1 {
		t.Errorf("history records = %d, want 1", f.history.len())
	}
	item, ok := f.review.Get(src)
	if !ok || item.Destination != res.Destination {
		t.Fatalf("review entry = %+v (present %v)", item, ok)
	}
	if !f.exists("a.pdf") {
		t.Fatal("source should still be there")
	}

	res, err = f.mover.Move(src)
	if err != nil {
		t.Fatalf("second Move: %v", err)
	}
	if res.Skipped != SkipCopiedBefore {
		t.Errorf("skipped = %q, want %q", res.Skipped, SkipCopiedBefore)
	}
	if f.exists("a.pdf") || f.exists("Documents/a (1).pdf") {
		t.Error("source should be removed without a second copy")
	}
	if len(f.review.GetAll()) != 0 || f.history.len() != 1 {
		t.Errorf("review = %v, history = %d", f.review.GetAll(), f.history.len())
	}
}

func TestMoveLeftoverEntryIgnoredForDifferentFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "Documents/a.pdf", "old copy")
	src := f.write(t, "a.pdf", "a newer download")
	f.review.Add(ReviewItem{Path: src, Kind: catalog.KindIO, Destination: filepath.Join(f.root, "Documents", "a.pdf")})

	res, err := f.mover.Move(src)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Moved() || !f.exists("Documents/a (1).pdf") {
		t.Fatalf("new file should be moved normally: %+v", res)
	}
	if _, ok := f.review.Get(src); ok {
		t.Error("stale review entry should be cleared by the move")
	}
}
