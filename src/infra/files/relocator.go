package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/downsort/src/catalog"
	"github.com/google/uuid"
)

// CollisionPolicy decides what happens when the destination name is taken.
type CollisionPolicy string

const (
	// CollisionRename appends " (n)" before the extension until a free name is found.
	CollisionRename CollisionPolicy = "rename"
	// CollisionSkip leaves the source in place and reports catalog.ErrCollision.
	CollisionSkip CollisionPolicy = "skip"
)

const (
	maxRenameAttempts = 1000
	tempPrefix        = ".downsort-"
)

// Relocator moves files into a destination folder without ever replacing an
// existing file.
type Relocator struct {
	policy CollisionPolicy
	remove func(string) error
}

// NewRelocator creates a relocator. Unknown policies fall back to rename.
func NewRelocator(policy string) *Relocator {
	p := CollisionPolicy(strings.ToLower(policy))
	if p != CollisionSkip {
		p = CollisionRename
	}
	return &Relocator{policy: p, remove: os.Remove}
}

// Policy returns the collision policy in use.
func (r *Relocator) Policy() CollisionPolicy {
	return r.policy
}

// Relocate moves src into dir, keeping its base name when free. It returns the
// final path and whether the name had to change. dir must already exist.
// Errors are *catalog.MoveError values.
func (r *Relocator) Relocate(src, dir string) (string, bool, error) {
	base := filepath.Base(src)
	for attempt := 0; attempt < maxRenameAttempts; attempt++ {
		dst := filepath.Join(dir, candidateName(base, attempt))
		err := renameNoReplace(src, dst)
		switch {
		case err == nil:
			return dst, attempt > 0, nil
		case errors.Is(err, fs.ErrExist):
			if r.policy == CollisionSkip {
				return "", false, catalog.NewMoveError(catalog.KindCollision, src, fmt.Errorf("%s already exists", dst))
			}
			continue
		case errors.Is(err, fs.ErrNotExist):
			return "", false, catalog.NewMoveError(catalog.KindNotFound, src, err)
		case isCrossDevice(err):
			slog.Debug("Cross-device move, copying", "src", src, "dir", dir)
			return r.copyAcross(src, dir, base)
		default:
			return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
		}
	}
	return "", false, catalog.NewMoveError(catalog.KindCollision, src,
		fmt.Errorf("no free name for %s in %s after %d attempts", base, dir, maxRenameAttempts))
}

// copyAcross copies src into a hidden temp file next to the destination, then
// renames the temp file into place and removes src. The final name never
// shows a partially written file.
func (r *Relocator) copyAcross(src, dir, base string) (string, bool, error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, catalog.NewMoveError(catalog.KindNotFound, src, err)
		}
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
	}

	tmpPath := filepath.Join(dir, tempPrefix+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, fmt.Errorf("create temp file: %w", err))
	}
	placed := false
	defer func() {
		if !placed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, fmt.Errorf("copy: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, fmt.Errorf("sync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return "", false, catalog.NewMoveError(catalog.KindIO, src, fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		slog.Warn("Failed to copy file mode", "path", tmpPath, "error", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		slog.Warn("Failed to copy file times", "path", tmpPath, "error", err)
	}

	var dst string
	renamed := false
	for attempt := 0; ; attempt++ {
		if attempt >= maxRenameAttempts {
			return "", false, catalog.NewMoveError(catalog.KindCollision, src,
				fmt.Errorf("no free name for %s in %s after %d attempts", base, dir, maxRenameAttempts))
		}
		dst = filepath.Join(dir, candidateName(base, attempt))
		err := renameNoReplace(tmpPath, dst)
		if err == nil {
			renamed = attempt > 0
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", false, catalog.NewMoveError(catalog.KindIO, src, err)
		}
		if r.policy == CollisionSkip {
			return "", false, catalog.NewMoveError(catalog.KindCollision, src, fmt.Errorf("%s already exists", dst))
		}
	}
	placed = true

	in.Close()
	if err := r.remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
		me := catalog.NewMoveError(catalog.KindIO, src, fmt.Errorf("remove source after copy: %w", err))
		me.Destination = dst
		return dst, renamed, me
	}
	return dst, renamed, nil
}

// candidateName returns base for attempt 0 and "stem (n).ext" afterwards.
func candidateName(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return fmt.Sprintf("%s (%d)", base, attempt)
	}
	return fmt.Sprintf("%s (%d)%s", stem, attempt, ext)
}

// IsTempFile reports whether name is one of the relocator's in-flight temp files.
func IsTempFile(name string) bool {
	name = filepath.Base(name)
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, ".tmp")
}

// renameIfAbsent is the portable no-replace rename. It leaves a small window
// between the check and the rename.
func renameIfAbsent(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}
