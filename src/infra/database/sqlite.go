package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory is a SQLite implementation of the catalog.History interface.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory opens (creating when needed) the history database at path.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent moves.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("History database ready", "path", path)
	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS moves (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			category TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			renamed BOOLEAN NOT NULL DEFAULT FALSE,
			moved_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_moves_category ON moves(category);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// RecordMove stores a completed move. Records without an ID get one.
func (d *SqliteHistory) RecordMove(ctx context.Context, record catalog.MoveRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.MovedAt.IsZero() {
		record.MovedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO moves (id, source, destination, category, size, renamed, moved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Source, record.Destination, record.Category, record.Size, record.Renamed,
		record.MovedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record move of %s: %w", record.Source, err)
	}
	return nil
}

// RecentMoves returns up to limit moves, newest first.
func (d *SqliteHistory) RecentMoves(ctx context.Context, limit int) ([]catalog.MoveRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, source, destination, category, size, renamed, moved_at
		FROM moves
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.MoveRecord
	for rows.Next() {
		var record catalog.MoveRecord
		var movedAtStr string
		if err := rows.Scan(&record.ID, &record.Source, &record.Destination, &record.Category,
			&record.Size, &record.Renamed, &movedAtStr); err != nil {
			return nil, err
		}
		record.MovedAt, _ = time.Parse(time.RFC3339Nano, movedAtStr)
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountByCategory returns how many moves landed in each category.
func (d *SqliteHistory) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT category, COUNT(*) as count
		FROM moves
		GROUP BY category
		ORDER BY count DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		distribution[category] = count
	}
	return distribution, rows.Err()
}

// Close closes the database.
func (d *SqliteHistory) Close() error {
	return d.db.Close()
}
