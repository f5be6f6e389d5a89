package organizing

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/downsort/src/catalog"
	"github.com/google/uuid"
)

// Reasons a file was left in place without an error.
const (
	SkipDirectory     = "directory"
	SkipNotRegular    = "not a regular file"
	SkipIgnored       = "ignored"
	SkipAlreadySorted = "already sorted"
	SkipCopiedBefore  = "copied before"
)

// ownPrefix marks files the organizer itself creates in the root and the
// category folders (lock file, cross-device temp files).
const ownPrefix = ".downsort"

// Relocator moves a file into a directory without overwriting anything.
type Relocator interface {
	Relocate(src, dir string) (dst string, renamed bool, err error)
}

// Result describes what Move did with one path.
type Result struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Category    string `json:"category,omitempty"`
	Renamed     bool   `json:"renamed,omitempty"`
	Skipped     string `json:"skipped,omitempty"`
}

// Moved reports whether the file was relocated.
func (r Result) Moved() bool {
	return r.Skipped == "" && r.Destination != ""
}

// Mover relocates single files into their category folder.
type Mover struct {
	settings  Settings
	relocator Relocator
	history   catalog.History
	review    ReviewList
	recorder  Recorder
}

// NewMover creates a Mover. history, review and recorder may be nil.
func NewMover(settings Settings, relocator Relocator, history catalog.History, review ReviewList, recorder Recorder) *Mover {
	if history == nil {
		history = catalog.NopHistory{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Mover{
		settings:  settings,
		relocator: relocator,
		history:   history,
		review:    review,
		recorder:  recorder,
	}
}

// Settings returns the settings the mover was built with.
func (m *Mover) Settings() Settings {
	return m.settings
}

// Move relocates path into root/<category>. Directories, non-regular files,
// ignored files and files already in their category folder are skipped
// without error. A source left behind by an earlier copy is only removed.
// Failures are *catalog.MoveError values.
func (m *Mover) Move(path string) (Result, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	res := Result{Source: path}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, m.fail(catalog.NewMoveError(catalog.KindNotFound, path, err))
		}
		return res, m.fail(catalog.NewMoveError(catalog.KindIO, path, err))
	}
	switch {
	case info.IsDir():
		res.Skipped = SkipDirectory
		return res, nil
	case !info.Mode().IsRegular():
		res.Skipped = SkipNotRegular
		return res, nil
	case strings.HasPrefix(info.Name(), ownPrefix), m.settings.ignored(path):
		res.Skipped = SkipIgnored
		return res, nil
	}

	if copied, ok := m.leftoverSource(path, info); ok {
		res.Destination = copied
		res.Skipped = SkipCopiedBefore
		return res, nil
	}

	category := m.settings.Table.Classify(extension(info.Name()))
	dir := m.settings.CategoryDir(category)
	res.Category = category
	if filepath.Dir(path) == dir {
		res.Skipped = SkipAlreadySorted
		return res, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, m.fail(catalog.NewMoveError(catalog.KindIO, path, err))
	}

	dst, renamed, err := m.relocator.Relocate(path, dir)
	var leftover *catalog.MoveError
	if err != nil {
		if !errors.As(err, &leftover) || leftover.Destination == "" {
			return res, m.fail(err)
		}
		dst = leftover.Destination
	}
	res.Destination = dst
	res.Renamed = renamed

	slog.Info("Moved file", "from", path, "to", dst, "category", category, "renamed", renamed)
	m.recorder.FileMoved(category)
	if m.review != nil {
		m.review.Remove(path)
	}
	record := catalog.MoveRecord{
		ID:          uuid.NewString(),
		Source:      path,
		Destination: dst,
		Category:    category,
		Size:        info.Size(),
		Renamed:     renamed,
		MovedAt:     time.Now(),
	}
	if err := m.history.RecordMove(context.Background(), record); err != nil {
		slog.Warn("Failed to record move in history", "path", path, "error", err)
	}
	if leftover != nil {
		m.keepLeftover(leftover)
	}
	return res, nil
}

// keepLeftover reports a source whose copy is in place but which could not be
// removed. The review entry remembers the copy so later attempts only retry
// the removal.
func (m *Mover) keepLeftover(me *catalog.MoveError) {
	slog.Warn("Copied file but could not remove the source", "path", me.Path, "copy", me.Destination, "error", me.Err)
	if m.review == nil {
		return
	}
	if err := m.review.Add(ReviewItem{
		Path:        me.Path,
		Kind:        me.Kind,
		Error:       me.Error(),
		Destination: me.Destination,
		Timestamp:   time.Now(),
	}); err != nil {
		slog.Warn("Failed to add file to review list", "path", me.Path, "error", err)
	}
}

// leftoverSource reports whether path is the source of an earlier copy, and if
// so retries removing it. It returns the path of the copy.
func (m *Mover) leftoverSource(path string, info fs.FileInfo) (string, bool) {
	if m.review == nil {
		return "", false
	}
	item, ok := m.review.Get(path)
	if !ok || item.Destination == "" {
		return "", false
	}
	copied, err := os.Stat(item.Destination)
	if err != nil || copied.Size() != info.Size() || copied.ModTime().Sub(info.ModTime()).Abs() > 2*time.Second {
		// The copy is gone or path now holds a different file.
		return "", false
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Source of an earlier copy still cannot be removed", "path", path, "copy", item.Destination, "error", err)
		item.Error = err.Error()
		item.Timestamp = time.Now()
		if err := m.review.Add(item); err != nil {
			slog.Warn("Failed to add file to review list", "path", path, "error", err)
		}
		return item.Destination, true
	}
	slog.Info("Removed source of an earlier copy", "path", path, "copy", item.Destination)
	m.review.Remove(path)
	return item.Destination, true
}

// fail counts the failure, logs it and puts collisions and I/O errors on the
// review list. Missing files are left to the caller.
func (m *Mover) fail(err error) error {
	kind := catalog.KindOf(err)
	m.recorder.MoveFailed(string(kind))

	var path string
	var me *catalog.MoveError
	if errors.As(err, &me) {
		path = me.Path
	}

	switch kind {
	case catalog.KindNotFound:
		return err
	case catalog.KindCollision:
		slog.Warn("File not moved, destination name taken", "path", path, "error", err)
	default:
		slog.Error("Failed to move file", "path", path, "error", err)
	}
	if m.review != nil && path != "" {
		if addErr := m.review.Add(ReviewItem{
			Path:      path,
			Kind:      kind,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}); addErr != nil {
			slog.Warn("Failed to add file to review list", "path", path, "error", addErr)
		}
	}
	return err
}

// extension returns the suffix from the last dot of name. Leading dots do not
// start an extension, so hidden files such as ".jpg" have none.
func extension(name string) string {
	if !strings.Contains(strings.TrimLeft(name, "."), ".") {
		return ""
	}
	return filepath.Ext(name)
}
