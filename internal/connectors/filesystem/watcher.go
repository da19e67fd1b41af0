package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// ErrWatcherClosed is returned by Run after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// Debounce is how long the vault must be quiet before a re-index fires.
	Debounce time.Duration

	// MinInterval is the minimum time between two re-index triggers.
	// Zero means no throttle beyond the debounce.
	MinInterval time.Duration

	// Extensions and IncludeHidden mirror the scanner so edits to files it
	// would ignore do not trigger a pass.
	Extensions    []string
	IncludeHidden bool
}

// TriggerFunc is called for each debounced batch of vault changes.
// Implementations perform a full re-index.
type TriggerFunc func(ctx context.Context) error

// Watcher observes every directory of a vault and fires a debounced,
// rate limited trigger when qualifying files change.
type Watcher struct {
	root     string
	debounce time.Duration
	limiter  *rate.Limiter
	filter   *Scanner

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	dirs   map[string]struct{}
	closed bool
}

// NewWatcher creates a watcher rooted at root and registers every
// directory beneath it.
func NewWatcher(root string, opts WatchOptions) (*Watcher, error) {
	absRoot, err := domain.DocumentID(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving vault path: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: vault path %s: %w", domain.ErrInvalidInput, absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: vault path %s is not a directory", domain.ErrInvalidInput, absRoot)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = domain.DefaultDebounce
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:     absRoot,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		filter:   NewScanner(ScanOptions{Extensions: opts.Extensions, IncludeHidden: opts.IncludeHidden}),
		fsw:      fsw,
		dirs:     make(map[string]struct{}),
	}

	if err := w.addTree(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Root returns the watched vault root.
func (w *Watcher) Root() string {
	return w.root
}

// Run blocks until ctx is cancelled or the watcher is closed, calling
// trigger after each quiet period that followed a qualifying change.
// Trigger errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, trigger TriggerFunc) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.Close()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			if err := w.limiter.Wait(ctx); err != nil {
				return w.Close()
			}
			logger.Debug("vault %s changed, re-indexing", w.root)
			if err := trigger(ctx); err != nil {
				logger.Warn("re-index after change failed: %v", err)
			}
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// handleEvent reports whether the event should schedule a re-index.
// New directories are added to the watch set.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)
	if !w.filter.includeHidden && isHidden(name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watching new directory %s: %v", event.Name, err)
			}
			return true
		}
	}

	// A removed or renamed directory can no longer be stat'ed, so it is
	// recognised from the watch set whatever its name looks like.
	if (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) && w.forgetTree(event.Name) {
		return true
	}

	_, ok := w.filter.matchExtension(name)
	return ok
}

// forgetTree drops dir and everything beneath it from the watch set and
// reports whether dir was being watched.
func (w *Watcher) forgetTree(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for path := range w.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.dirs, path)
		}
	}
	return true
}

// addTree registers dir and every non-hidden directory beneath it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("watch walk error at %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && !w.filter.includeHidden && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}
