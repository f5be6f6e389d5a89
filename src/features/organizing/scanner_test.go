package organizing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/downsort/src/catalog"
)

func TestScanOrganizesRootAndLeavesSubdirectories(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.pdf", "x")
	f.write(t, "b.unknownext", "x")
	f.write(t, "sub/inner.png", "x")

	report, err := NewScanner(f.mover).ScanAndOrganize(context.Background(), f.root)
	if err != nil {
		t.Fatalf("ScanAndOrganize: %v", err)
	}
	if report.Moved != 2 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	for _, want := range []string{"Documents/a.pdf", "Others/b.unknownext", "sub/inner.png"} {
		if !f.exists(want) {
			t.Errorf("%s missing", want)
		}
	}
	for _, name := range f.settings.Table.Names() {
		info, err := os.Stat(filepath.Join(f.root, name))
		if err != nil || !info.IsDir() {
			t.Errorf("category folder %s missing", name)
		}
	}
}

func TestScanIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.pdf", "x")
	f.write(t, "photo.jpeg", "x")
	scanner := NewScanner(f.mover)

	if _, err := scanner.ScanAndOrganize(context.Background(), f.root); err != nil {
		t.Fatal(err)
	}
	report, err := scanner.ScanAndOrganize(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Moved != 0 || report.Failed != 0 {
		t.Fatalf("second scan moved files: %+v", report)
	}
}

func TestScanCountsIgnoredAsSkipped(t *testing.T) {
	f := newFixture(t)
	f.write(t, "movie.mkv.part", "x")
	f.write(t, "a.txt", "x")

	report, err := NewScanner(f.mover).ScanAndOrganize(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if report.Moved != 1 || report.Skipped != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestScanContinuesPastFailures(t *testing.T) {
	f := newFixture(t, withCollision("skip"))
	f.write(t, "Documents/a.pdf", "old")
	f.write(t, "Images/b.png", "old")
	f.write(t, "a.pdf", "new")
	f.write(t, "b.png", "new")
	f.write(t, "c.zip", "x")

	report, err := NewScanner(f.mover).ScanAndOrganize(context.Background(), f.root)
	if !errors.Is(err, catalog.ErrCollision) {
		t.Fatalf("err = %v, want joined ErrCollision", err)
	}
	if report.Moved != 1 || report.Failed != 2 || len(report.Failures) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Failures[0].Kind != catalog.KindCollision {
		t.Errorf("failure kind = %s", report.Failures[0].Kind)
	}
	if !f.exists("Archives/c.zip") {
		t.Error("scan stopped at the first failure")
	}
}

func TestScanStopsWhenCancelled(t *testing.T) {
	f := newFixture(t)
	f.write(t, "a.pdf", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewScanner(f.mover).ScanAndOrganize(ctx, f.root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if report.Moved != 0 || !f.exists("a.pdf") {
		t.Fatal("cancelled scan moved files")
	}
}

func TestScanMissingRoot(t *testing.T) {
	f := newFixture(t)
	if _, err := NewScanner(f.mover).ScanAndOrganize(context.Background(), filepath.Join(f.root, "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
