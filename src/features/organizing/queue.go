package organizing

import (
	"errors"
	"time"

	"github.com/contre95/downsort/src/catalog"
)

var ErrNotInReview = errors.New("path is not in the review list")

// ReviewItem is a file whose last move attempt failed with a collision or an
// I/O error.
type ReviewItem struct {
	Path  string                `json:"path"`
	Kind  catalog.MoveErrorKind `json:"kind"`
	Error string                `json:"error"`
	// Destination is where a copy of Path already sits when only the removal
	// of Path failed.
	Destination string    `json:"destination,omitempty"`
	Attempts    int       `json:"attempts"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReviewList keeps failed moves for manual follow-up, keyed by path.
type ReviewList interface {
	// Add records a failure. A repeated failure for the same path replaces the
	// previous entry and bumps Attempts.
	Add(item ReviewItem) error
	Get(path string) (ReviewItem, bool)
	GetAll() map[string]ReviewItem
	Remove(path string) error
	Clear() error
}
