package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFallback is the category that receives files no other category claims.
const DefaultFallback = "Others"

// Category is a named bucket of file extensions.
type Category struct {
	Name       string   `yaml:"name" toml:"name" json:"name" validate:"required"`
	Extensions []string `yaml:"extensions" toml:"extensions" json:"extensions"`
}

// Table is the ordered extension-to-category policy. It is immutable once built.
type Table struct {
	categories []Category
	fallback   string
}

// DefaultCategories returns the built-in category list, in lookup order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"}},
		{Name: "Documents", Extensions: []string{".pdf", ".docx", ".txt", ".xlsx", ".pptx"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mkv", ".mov", ".avi"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".aac"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".tar", ".gz"}},
		{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".sql"}},
		{Name: "Executables", Extensions: []string{".exe", ".sh", ".bat", ".app"}},
	}
}

// DefaultTable returns the built-in table with "Others" as fallback.
func DefaultTable() *Table {
	t, _ := NewTable(DefaultCategories(), DefaultFallback)
	return t
}

// NewTable validates and normalizes categories into a Table. An empty fallback
// means DefaultFallback.
func NewTable(categories []Category, fallback string) (*Table, error) {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if err := validateName(fallback); err != nil {
		return nil, fmt.Errorf("fallback category: %w", err)
	}

	seen := map[string]bool{strings.ToLower(fallback): true}
	normalized := make([]Category, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if err := validateName(name); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("category %q is declared twice or shadows the fallback", name)
		}
		seen[strings.ToLower(name)] = true

		exts := make([]string, 0, len(c.Extensions))
		for _, ext := range c.Extensions {
			ext = NormalizeExtension(ext)
			if ext == "" {
				return nil, fmt.Errorf("category %q has an empty extension", name)
			}
			exts = append(exts, ext)
		}
		normalized = append(normalized, Category{Name: name, Extensions: exts})
	}

	return &Table{categories: normalized, fallback: fallback}, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("name is empty")
	case name == "." || name == "..":
		return errors.New("name is not a folder name")
	case strings.ContainsAny(name, `/\`):
		return errors.New("name contains a path separator")
	}
	return nil
}

// NormalizeExtension lowercases ext and makes sure it carries a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Classify maps an extension to a category name. Matching is case-insensitive
// and the first category that lists the extension wins; anything else lands in
// the fallback.
func (t *Table) Classify(ext string) string {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return t.fallback
	}
	for _, c := range t.categories {
		for _, candidate := range c.Extensions {
			if candidate == ext {
				return c.Name
			}
		}
	}
	return t.fallback
}

// Fallback returns the name of the catch-all category.
func (t *Table) Fallback() string {
	return t.fallback
}

// Categories returns a copy of the configured categories, fallback excluded.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Extensions: append([]string(nil), c.Extensions...)}
	}
	return out
}

// Names returns every category folder name, fallback last.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.categories)+1)
	for _, c := range t.categories {
		names = append(names, c.Name)
	}
	return append(names, t.fallback)
}

// IsCategory reports whether name is one of the table's folder names.
func (t *Table) IsCategory(name string) bool {
	for _, n := range t.Names() {
		if n == name {
			return true
		}
	}
	return false
}
