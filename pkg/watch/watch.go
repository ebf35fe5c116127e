// Package watch rebuilds a site when its sources change.
//
// A [Watcher] follows one or more directory trees recursively plus
// individual files such as the configuration. Filesystem events are
// debounced into a single rebuild, and rebuilds run one at a time on the
// goroutine that called [Watcher.Run].
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is the quiet period after the last event before a rebuild.
const DefaultWindow = 300 * time.Millisecond

var skipDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// RebuildFunc is invoked with the sorted, distinct paths that changed.
type RebuildFunc func(ctx context.Context, changed []string) error

// Watcher watches source trees and files for changes.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *log.Logger
	window time.Duration

	trees   []string
	files   map[string]bool
	ignored []string
}

// New creates a watcher. A zero window means [DefaultWindow]; a nil logger
// means log.Default().
func New(logger *log.Logger, window time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Watcher{
		fs:     fw,
		logger: logger,
		window: window,
		files:  make(map[string]bool),
	}, nil
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// AddTree watches root and every directory below it, except version
// control and dependency directories.
func (w *Watcher) AddTree(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.trees = append(w.trees, abs)
	return w.addRecursive(abs)
}

// AddFile watches a single file through its parent directory. The file
// need not exist yet.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.files[abs] = true
	return w.fs.Add(filepath.Dir(abs))
}

// Ignore drops events below dir, for output that lands inside a watched tree.
func (w *Watcher) Ignore(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	w.ignored = append(w.ignored, abs)
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if (path != root && skipDirs[d.Name()]) || w.isIgnored(path) {
			return fs.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Relevant reports whether a change to path should trigger a rebuild.
func (w *Watcher) Relevant(path string) bool {
	if w.files[path] {
		return true
	}
	if w.isIgnored(path) {
		return false
	}
	for _, root := range w.trees {
		if rel, ok := under(root, path); ok {
			for _, part := range strings.Split(rel, string(filepath.Separator)) {
				if skipDirs[part] {
					return false
				}
			}
			return true
		}
	}
	return false
}

func (w *Watcher) isIgnored(path string) bool {
	for _, dir := range w.ignored {
		if _, ok := under(dir, path); ok {
			return true
		}
	}
	return false
}

func under(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// Run delivers debounced changes to rebuild until ctx is done. A failed
// rebuild is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	var (
		mu      sync.Mutex
		changed = make(map[string]struct{})
		ready   = make(chan struct{}, 1)
	)
	debouncer := NewDebouncer(w.window, func(paths []string) {
		mu.Lock()
		for _, p := range paths {
			changed[p] = struct{}{}
		}
		mu.Unlock()
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event, debouncer)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-ready:
			mu.Lock()
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			changed = make(map[string]struct{})
			mu.Unlock()

			sort.Strings(paths)
			if err := rebuild(ctx, paths); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("rebuild failed", "err", err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, d *Debouncer) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.Relevant(event.Name) {
		return
	}
	w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDirs[info.Name()] {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("cannot watch directory", "path", event.Name, "err", err)
			}
		}
	}
	d.Add(event.Name)
}
