package watcher

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// Filter matches paths against ignore patterns. A pattern matches either the
// whole slash-separated path or just the base name.
type Filter struct {
	mu       sync.RWMutex
	patterns []glob.Glob
}

// NewFilter compiles patterns into a Filter. Blank lines and "#" comments are
// skipped.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	if err := f.SetPatterns(patterns); err != nil {
		return nil, err
	}
	return f, nil
}

// SetPatterns replaces the ignore patterns.
func (f *Filter) SetPatterns(patterns []string) error {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return err
		}
		compiled = append(compiled, g)
	}

	f.mu.Lock()
	f.patterns = compiled
	f.mu.Unlock()
	return nil
}

// IsIgnored checks if a path matches any ignore pattern
func (f *Filter) IsIgnored(path string) bool {
	if f == nil {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	normalized := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range f.patterns {
		if pattern.Match(normalized) || pattern.Match(base) {
			return true
		}
	}
	return false
}
