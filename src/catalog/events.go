package catalog

import "time"

// FileEventKind is the kind of change a watcher observed.
type FileEventKind string

const (
	FileCreated  FileEventKind = "created"
	FileModified FileEventKind = "modified"
)

// FileEvent is a change notification for a single path. It is consumed
// immediately and never stored.
type FileEvent struct {
	Path      string
	Kind      FileEventKind
	Timestamp time.Time
}
