package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/downsort/src/catalog"
)

func newTestHistory(t *testing.T) *SqliteHistory {
	t.Helper()
	h, err := NewSqliteHistory(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("NewSqliteHistory: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestRecordAndListMoves(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	moves := []catalog.MoveRecord{
		{Source: "/dl/a.pdf", Destination: "/dl/Documents/a.pdf", Category: "Documents", Size: 10, MovedAt: base},
		{Source: "/dl/b.png", Destination: "/dl/Images/b.png", Category: "Images", Size: 20, MovedAt: base.Add(time.Minute)},
		{Source: "/dl/c.pdf", Destination: "/dl/Documents/c (1).pdf", Category: "Documents", Renamed: true, MovedAt: base.Add(2 * time.Minute)},
	}
	for _, m := range moves {
		if err := h.RecordMove(ctx, m); err != nil {
			t.Fatalf("RecordMove: %v", err)
		}
	}

	recent, err := h.RecentMoves(ctx, 2)
	if err != nil {
		t.Fatalf("RecentMoves: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].Source != "/dl/c.pdf" || !recent[0].Renamed {
		t.Errorf("newest = %+v", recent[0])
	}
	if recent[0].ID == "" {
		t.Error("ID not assigned")
	}
	if !recent[1].MovedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("moved_at = %v", recent[1].MovedAt)
	}

	counts, err := h.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if counts["Documents"] != 2 || counts["Images"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestHistoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := NewSqliteHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	h.RecordMove(ctx, catalog.MoveRecord{Source: "/dl/x.zip", Destination: "/dl/Archives/x.zip", Category: "Archives"})
	h.Close()

	h, err = NewSqliteHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	recent, err := h.RecentMoves(ctx, 10)
	if err != nil || len(recent) != 1 {
		t.Fatalf("recent = %v, err = %v", recent, err)
	}
}
