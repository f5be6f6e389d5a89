package organizing

import (
	"fmt"
	"path/filepath"

	"github.com/contre95/downsort/src/catalog"
	"github.com/contre95/downsort/src/features/config"
)

// IgnoreMatcher reports whether a path should be left alone.
type IgnoreMatcher interface {
	IsIgnored(path string) bool
}

// Settings is the read-only organizer state shared by the mover, the scanner
// and the dispatcher. It is built once at startup.
type Settings struct {
	Root             string
	Table            *catalog.Table
	Collision        string
	ReclassifySorted bool
	Ignore           IgnoreMatcher
}

// NewSettings derives Settings from the loaded configuration.
func NewSettings(cfg *config.Config, ignore IgnoreMatcher) (Settings, error) {
	table, err := cfg.Table()
	if err != nil {
		return Settings{}, fmt.Errorf("invalid category table: %w", err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}
	return Settings{
		Root:             filepath.Clean(root),
		Table:            table,
		Collision:        cfg.Organize.Collision,
		ReclassifySorted: cfg.Watch.ReclassifySorted,
		Ignore:           ignore,
	}, nil
}

// CategoryDir returns the folder a category's files are moved into.
func (s Settings) CategoryDir(category string) string {
	return filepath.Join(s.Root, category)
}

// inCategoryFolder reports whether path sits directly inside one of the
// category folders.
func (s Settings) inCategoryFolder(path string) bool {
	parent := filepath.Dir(path)
	return filepath.Dir(parent) == s.Root && s.Table.IsCategory(filepath.Base(parent))
}

func (s Settings) ignored(path string) bool {
	return s.Ignore != nil && s.Ignore.IsIgnored(path)
}
