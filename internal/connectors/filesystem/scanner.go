package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driven.Scanner = (*Scanner)(nil)

// scanBuffer is the capacity of the item channel.
const scanBuffer = 64

// ScanOptions configures which files a Scanner turns into documents.
type ScanOptions struct {
	// Extensions lists qualifying extensions, compared case-insensitively.
	// Empty means [".md"].
	Extensions []string

	// IncludeHidden walks into entries whose name starts with a dot.
	IncludeHidden bool

	// MaxFileBytes caps the size of a body that will be read. Larger files
	// produce a document with empty content. Zero means the default.
	MaxFileBytes int64
}

// Scanner walks a vault directory and emits one item per visited file.
type Scanner struct {
	extensions    []string
	includeHidden bool
	maxFileBytes  int64
}

// NewScanner creates a scanner with the given options.
func NewScanner(opts ScanOptions) *Scanner {
	exts := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, strings.ToLower(ext))
	}
	if len(exts) == 0 {
		exts = []string{domain.DefaultExtension}
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxFileBytes
	}

	return &Scanner{
		extensions:    exts,
		includeHidden: opts.IncludeHidden,
		maxFileBytes:  maxBytes,
	}
}

// Extensions returns the normalised qualifying extensions.
func (s *Scanner) Extensions() []string {
	return append([]string(nil), s.extensions...)
}

// Scan walks root recursively. The returned channel is closed when the walk
// finishes or ctx is cancelled. A root that does not exist, or is not a
// directory, yields no items and no error.
func (s *Scanner) Scan(ctx context.Context, root string) (<-chan domain.ScanItem, error) {
	items := make(chan domain.ScanItem, scanBuffer)

	absRoot, ok := s.resolveRoot(root)
	if !ok {
		close(items)
		return items, nil
	}

	go func() {
		defer close(items)
		defer logger.Elapsed("scan "+absRoot, time.Now())

		err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
			item, skipDir := s.visit(absRoot, path, d, walkErr)
			if skipDir {
				return filepath.SkipDir
			}
			if item == nil {
				return nil
			}

			select {
			case items <- *item:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("walking %s: %v", absRoot, err)
		}
	}()

	return items, nil
}

// resolveRoot canonicalises root and checks that it is a directory. A
// symlinked vault is walked at its target so the walk descends into it.
func (s *Scanner) resolveRoot(root string) (string, bool) {
	if strings.TrimSpace(root) == "" {
		logger.Warn("vault path is empty, nothing to scan")
		return "", false
	}

	absRoot, err := domain.DocumentID(root)
	if err != nil {
		logger.Warn("resolving vault path %s: %v", root, err)
		return "", false
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		logger.Warn("vault path %s is not accessible: %v", absRoot, err)
		return "", false
	}
	if !info.IsDir() {
		logger.Warn("vault path %s is not a directory", absRoot)
		return "", false
	}

	return absRoot, true
}

// visit classifies one walk entry. It returns the item to emit (nil for
// nothing) and whether the walk should skip the entry's subtree.
func (s *Scanner) visit(root, path string, d fs.DirEntry, walkErr error) (*domain.ScanItem, bool) {
	if walkErr != nil {
		logger.Debug("walk error at %s: %v", path, walkErr)
		if path == root {
			return nil, false
		}
		return &domain.ScanItem{
			Path:    path,
			Outcome: domain.ScanSkipped,
			Reason:  domain.SkipWalkError,
			Err:     walkErr,
		}, false
	}

	// The root is the vault itself, never a candidate
	if path == root {
		return nil, false
	}

	if !s.includeHidden && isHidden(d.Name()) {
		logger.Debug("skipping hidden %s", path)
		if d.IsDir() {
			return nil, true
		}
		return skipped(path, domain.SkipHidden), false
	}

	ext, qualifies := s.matchExtension(d.Name())

	if d.IsDir() {
		if qualifies {
			return skipped(path, domain.SkipDirectory), false
		}
		return nil, false
	}

	if !qualifies {
		return skipped(path, domain.SkipExtension), false
	}

	return s.readDocument(path, ext), false
}

// readDocument builds the document for a qualifying file. Failures to read
// the body produce a document with empty content rather than no document.
func (s *Scanner) readDocument(path, ext string) *domain.ScanItem {
	id, err := domain.DocumentID(path)
	if err != nil {
		id = filepath.Clean(path)
	}

	doc := &domain.Document{
		ID:    id,
		Path:  id,
		Title: domain.TitleFromPath(path, ext),
	}
	item := &domain.ScanItem{
		Path:     path,
		Outcome:  domain.ScanIndexed,
		Document: doc,
	}

	// os.Stat follows symlinks so a link to a note is indexed as the note.
	info, err := os.Stat(path)
	if err != nil {
		return degraded(item, domain.SkipUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		return skipped(path, domain.SkipNotRegular)
	}
	if info.Size() > s.maxFileBytes {
		return degraded(item, domain.SkipTooLarge,
			fmt.Errorf("file is %d bytes, limit is %d", info.Size(), s.maxFileBytes))
	}

	body, err := readLimited(path, s.maxFileBytes)
	if err != nil {
		return degraded(item, domain.SkipUnreadable, err)
	}
	if int64(len(body)) > s.maxFileBytes {
		return degraded(item, domain.SkipTooLarge, errors.New("file grew past the size limit while reading"))
	}
	if !utf8.Valid(body) {
		return degraded(item, domain.SkipInvalidUTF8, errors.New("content is not valid UTF-8"))
	}

	doc.Content = string(body)
	return item
}

func (s *Scanner) matchExtension(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return ext, true
		}
	}
	return "", false
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func skipped(path string, reason domain.SkipReason) *domain.ScanItem {
	return &domain.ScanItem{
		Path:    path,
		Outcome: domain.ScanSkipped,
		Reason:  reason,
	}
}

func degraded(item *domain.ScanItem, reason domain.SkipReason, err error) *domain.ScanItem {
	logger.Debug("indexing %s with empty content: %s: %v", item.Path, reason, err)
	item.Outcome = domain.ScanReadFailed
	item.Reason = reason
	item.Err = err
	item.Document.Content = ""
	return item
}
