package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document represents one indexed note.
// Its identity is derived from the absolute file path, so re-indexing the
// same path replaces the row instead of duplicating it.
type Document struct {
	// ID is the stable identity (currently the cleaned absolute path).
	ID string

	// Path is the filesystem location, used for display and re-opening.
	Path string

	// Title is the file name with the indexable extension removed.
	Title string

	// Content is the full UTF-8 text body.
	Content string

	// Tags is reserved metadata. It is always empty today but is part
	// of the persisted schema.
	Tags []string

	// IndexedAt is when the index pass that last wrote this row started.
	IndexedAt time.Time
}

// TagString joins tags into the space-separated form stored on disk.
func (d *Document) TagString() string {
	return strings.Join(d.Tags, " ")
}

// ParseTags splits the stored tag string back into a slice.
// An empty string yields a nil slice.
func ParseTags(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// DocumentID derives the identity for a file path: absolute, cleaned and
// with symlinks resolved. When path does not exist, the longest existing
// prefix is resolved and the rest is appended unchanged, so a deleted note
// maps to the same id it was indexed under.
func DocumentID(path string) (string, error) {
	abs, err := AbsolutePath(path)
	if err != nil {
		return "", err
	}
	return resolveLinks(abs), nil
}

// AbsolutePath makes path absolute and cleans it without touching the
// filesystem.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func resolveLinks(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs
	}
	return filepath.Join(resolveLinks(parent), filepath.Base(abs))
}

// TitleFromPath returns the file name with ext removed.
// The extension is compared case-insensitively so "Plan.MD" yields "Plan".
func TitleFromPath(path, ext string) string {
	base := filepath.Base(path)
	if ext != "" && len(base) >= len(ext) && strings.EqualFold(base[len(base)-len(ext):], ext) {
		return base[:len(base)-len(ext)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
