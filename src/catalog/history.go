package catalog

import (
	"context"
	"time"
)

// MoveRecord is one completed relocation.
type MoveRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Category    string    `json:"category"`
	Size        int64     `json:"size"`
	Renamed     bool      `json:"renamed"`
	MovedAt     time.Time `json:"moved_at"`
}

// History persists completed moves.
type History interface {
	RecordMove(ctx context.Context, record MoveRecord) error
	RecentMoves(ctx context.Context, limit int) ([]MoveRecord, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	Close() error
}

// NopHistory discards records. It is used when history is disabled.
type NopHistory struct{}

func (NopHistory) RecordMove(context.Context, MoveRecord) error { return nil }

func (NopHistory) RecentMoves(context.Context, int) ([]MoveRecord, error) { return nil, nil }

func (NopHistory) CountByCategory(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (NopHistory) Close() error { return nil }
