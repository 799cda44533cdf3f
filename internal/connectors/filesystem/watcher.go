// Package filesystem finds and watches documents in a local directory.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
// Editors and copies write in bursts; one ingestion per burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned when watching a closed Watcher.
var ErrClosed = errors.New("filesystem: watcher closed")

// Watcher reports regular, non-hidden files under a root directory.
type Watcher struct {
	root     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher rooted at root.
func New(root string) *Watcher {
	return &Watcher{root: root, debounce: DefaultDebounce}
}

// WithDebounce sets the quiet period before a changed file is reported.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Scan returns every existing file under root in lexical order.
// Hidden files and directories are skipped.
func (w *Watcher) Scan(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if w.isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Watch reports files that are created or written under root until ctx is
// done or the watcher is closed. New subdirectories are watched as they
// appear. Each path is reported once per burst of writes.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if _, err := os.Stat(w.root); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.watcher = fw
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan string)
	go w.loop(ctx, fw, out)
	return out, nil
}

// loop collects events into a pending set and flushes quiet paths.
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- string) {
	defer close(out)

	pending := make(map[string]time.Time)
	interval := w.debounce / 2
	if interval <= 0 {
		interval = time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleEvent(event); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case now := <-tick.C:
			ready := make([]string, 0, len(pending))
			for path, last := range pending {
				if now.Sub(last) >= w.debounce {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)
			for _, path := range ready {
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent returns the file path to report for an event, if any.
// Directories are added to the watch and never reported.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if w.isHidden(event.Name) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Removed again before we looked.
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watch: add %s: %v", event.Name, err)
			}
		}
		return "", false
	}
	if !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	w.mu.Lock()
	fw := w.watcher
	w.mu.Unlock()
	if fw == nil {
		return ErrClosed
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isHidden(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// isHidden reports whether any component of path below root starts with a dot.
func (w *Watcher) isHidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return isHidden(rel)
}

// isHidden reports whether any path component starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}
