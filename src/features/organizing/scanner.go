package organizing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/downsort/src/catalog"
)

// ScanFailure is one file the scan could not move.
type ScanFailure struct {
	Path  string                `json:"path"`
	Kind  catalog.MoveErrorKind `json:"kind"`
	Error string                `json:"error"`
}

// ScanReport summarises a sweep of the watched root.
type ScanReport struct {
	Root     string        `json:"root"`
	Moved    int           `json:"moved"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Failures []ScanFailure `json:"failures,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Scanner sweeps the direct entries of the watched root through the Mover.
type Scanner struct {
	mover    *Mover
	recorder Recorder
}

// NewScanner creates a new Scanner.
func NewScanner(mover *Mover) *Scanner {
	return &Scanner{mover: mover, recorder: mover.recorder}
}

// ScanAndOrganize moves every regular file directly inside root into its
// category folder. Subdirectories, category folders included, are not
// descended into. Per-file failures do not stop the scan; they are collected
// in the report and joined into the returned error.
func (s *Scanner) ScanAndOrganize(ctx context.Context, root string) (ScanReport, error) {
	return s.scan(ctx, root, nil)
}

// scan is ScanAndOrganize with an optional progress callback receiving the
// number of entries handled so far and the total.
func (s *Scanner) scan(ctx context.Context, root string, progress func(done, total int)) (ScanReport, error) {
	start := time.Now()
	report := ScanReport{Root: root}

	entries, err := os.ReadDir(root)
	if err != nil {
		return report, fmt.Errorf("failed to list %s: %w", root, err)
	}
	slog.Info("Starting scan of watched root", "root", root, "entries", len(entries))

	var errs []error
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			slog.Warn("Scan cancelled", "root", root, "handled", i, "total", len(entries))
			report.Duration = time.Since(start)
			return report, errors.Join(append(errs, err)...)
		}
		if progress != nil {
			progress(i, len(entries))
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(root, entry.Name())
		res, err := s.mover.Move(path)
		switch {
		case err == nil && res.Moved():
			report.Moved++
		case err == nil:
			slog.Debug("Left file in place", "path", path, "reason", res.Skipped)
			report.Skipped++
		case errors.Is(err, catalog.ErrNotFound):
			slog.Debug("File disappeared during scan", "path", path)
			report.Skipped++
		default:
			report.Failed++
			report.Failures = append(report.Failures, ScanFailure{
				Path:  path,
				Kind:  catalog.KindOf(err),
				Error: err.Error(),
			})
			errs = append(errs, err)
		}
	}

	report.Duration = time.Since(start)
	s.recorder.ScanFinished(report.Duration)
	slog.Info("Scan of watched root complete",
		"root", root,
		"moved", report.Moved,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration.Round(time.Millisecond),
	)
	return report, errors.Join(errs...)
}
