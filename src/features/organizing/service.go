package organizing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/features/jobs"
)

const ScanJobType = "sort_directory"

// CategoryView is a category as presented to users.
type CategoryView struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Dir        string   `json:"dir"`
	Fallback   bool     `json:"fallback,omitempty"`
}

// Status is a snapshot of the organizer.
type Status struct {
	Root            string         `json:"root"`
	Watching        bool           `json:"watching"`
	Collision       string         `json:"collision"`
	StartedAt       time.Time      `json:"started_at"`
	LastScan        *ScanReport    `json:"last_scan,omitempty"`
	PendingReview   int            `json:"pending_review"`
	MovedByCategory map[string]int `json:"moved_by_category"`
}

// Service is the domain service for the organizing feature.
type Service struct {
	mover      *Mover
	scanner    *Scanner
	history    catalog.History
	review     ReviewList
	jobService jobs.JobService
	startedAt  time.Time
	watching   atomic.Bool

	mu       sync.RWMutex
	lastScan *ScanReport
}

// NewService creates a new organizing service.
func NewService(mover *Mover, history catalog.History, review ReviewList, jobService jobs.JobService) *Service {
	if history == nil {
		history = catalog.NopHistory{}
	}
	return &Service{
		mover:      mover,
		scanner:    NewScanner(mover),
		history:    history,
		review:     review,
		jobService: jobService,
		startedAt:  time.Now(),
	}
}

// Settings returns the organizer settings.
func (s *Service) Settings() Settings {
	return s.mover.Settings()
}

// Mover returns the mover used by the service.
func (s *Service) Mover() *Mover {
	return s.mover
}

// Scan sweeps the watched root synchronously.
func (s *Service) Scan(ctx context.Context) (ScanReport, error) {
	return s.scanWithProgress(ctx, nil)
}

func (s *Service) scanWithProgress(ctx context.Context, progress func(done, total int)) (ScanReport, error) {
	report, err := s.scanner.scan(ctx, s.Settings().Root, progress)
	s.mu.Lock()
	s.lastScan = &report
	s.mu.Unlock()
	return report, err
}

// StartScan starts a background sweep as a job and returns its ID.
func (s *Service) StartScan() (string, error) {
	if s.jobService == nil {
		return "", fmt.Errorf("jobs are not available")
	}
	root := s.Settings().Root
	slog.Debug("StartScan service called", "root", root)
	jobID, err := s.jobService.StartJob(ScanJobType, "Sort Directory", map[string]any{
		"root": root,
	})
	if err != nil {
		slog.Error("Service.StartScan: failed to start job", "error", err)
		return "", fmt.Errorf("failed to start sort job: %w", err)
	}
	return jobID, nil
}

// SetWatching records whether the dispatcher is running.
func (s *Service) SetWatching(watching bool) {
	s.watching.Store(watching)
}

// Status returns a snapshot of the organizer.
func (s *Service) Status(ctx context.Context) Status {
	settings := s.Settings()
	status := Status{
		Root:      settings.Root,
		Watching:  s.watching.Load(),
		Collision: settings.Collision,
		StartedAt: s.startedAt,
	}
	s.mu.RLock()
	if s.lastScan != nil {
		report := *s.lastScan
		status.LastScan = &report
	}
	s.mu.RUnlock()
	if s.review != nil {
		status.PendingReview = len(s.review.GetAll())
	}
	counts, err := s.history.CountByCategory(ctx)
	if err != nil {
		slog.Warn("Failed to count moves by category", "error", err)
		counts = map[string]int{}
	}
	status.MovedByCategory = counts
	return status
}

// Categories returns the effective category table, fallback last.
func (s *Service) Categories() []CategoryView {
	settings := s.Settings()
	views := make([]CategoryView, 0, len(settings.Table.Names()))
	for _, c := range settings.Table.Categories() {
		views = append(views, CategoryView{
			Name:       c.Name,
			Extensions: c.Extensions,
			Dir:        settings.CategoryDir(c.Name),
		})
	}
	fallback := settings.Table.Fallback()
	return append(views, CategoryView{
		Name:       fallback,
		Extensions: []string{},
		Dir:        settings.CategoryDir(fallback),
		Fallback:   true,
	})
}

// History returns the most recent moves, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]catalog.MoveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.history.RecentMoves(ctx, limit)
}

// Failures returns the review list, oldest first.
func (s *Service) Failures() []ReviewItem {
	if s.review == nil {
		return nil
	}
	all := s.review.GetAll()
	items := make([]ReviewItem, 0, len(all))
	for _, item := range all {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return items
}

// ClearFailures empties the review list.
func (s *Service) ClearFailures() error {
	if s.review == nil {
		return nil
	}
	return s.review.Clear()
}
