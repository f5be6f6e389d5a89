package organizing

import (
	"context"
	"errors"
	"fmt"

	"github.com/contre95/downsort/src/features/jobs"
)

// ScanTask implements jobs.Task for sweeps of the watched root.
type ScanTask struct {
	service *Service
}

// NewScanTask creates a new ScanTask.
func NewScanTask(service *Service) *ScanTask {
	return &ScanTask{service: service}
}

// MetadataKeys returns the required metadata keys for a sort job.
func (t *ScanTask) MetadataKeys() []string {
	return []string{"root"}
}

// Execute sweeps the root and reports progress per entry.
func (t *ScanTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	progress := func(done, total int) {
		if total == 0 {
			return
		}
		progressUpdater(done*100/total, fmt.Sprintf("Handled %d of %d entries", done, total))
	}

	report, err := t.service.scanWithProgress(ctx, progress)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	finalMessage := fmt.Sprintf("Sort finished. %d moved, %d skipped, %d failed.", report.Moved, report.Skipped, report.Failed)
	job.Logger.Info(finalMessage, "root", report.Root, "duration", report.Duration)
	for _, failure := range report.Failures {
		job.Logger.Error("File not moved", "path", failure.Path, "kind", failure.Kind, "error", failure.Error)
	}
	stats := map[string]any{"report": report, "msg": finalMessage}

	if err != nil && report.Moved == 0 && report.Failed == 0 {
		return stats, fmt.Errorf("failed to sort directory: %w", err)
	}
	if report.Failed > 0 {
		return stats, errors.New("some files could not be moved")
	}
	return stats, nil
}

// Cleanup does nothing for sort jobs.
func (t *ScanTask) Cleanup(job *jobs.Job) error {
	return nil
}
