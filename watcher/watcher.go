// Package watcher reports debounced changes below a documentation root, as
// repository-relative paths, for local authoring.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PathFilter decides which paths are watched and reported. ignore.Matcher implements it.
type PathFilter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// reloader is implemented by filters whose rules live in files under the root.
type reloader interface {
	Reload()
}

// Options configures a Watcher.
type Options struct {
	RootDir  string
	Filter   PathFilter
	Interval time.Duration // defaults to DefaultInterval
	Logger   *slog.Logger
}

// Watcher watches every non-ignored directory under a root.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	filter    PathFilter
	rootDir   string
	logger    *slog.Logger
}

// New creates a recursive watcher on options.RootDir.
func New(options Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(options.Interval),
		filter:    options.Filter,
		rootDir:   filepath.Clean(options.RootDir),
		logger:    logger,
	}

	if err := w.addTree(w.rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers dir and its non-ignored subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootDir && w.filter.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := w.fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
}

// Batches returns the channel of debounced change batches.
func (w *Watcher) Batches() <-chan Batch {
	return w.debouncer.Output()
}

// Run pumps filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.debouncer.Stop()
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.filter.ShouldIgnoreDir(path) {
				// files created before the directory was registered are missed
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if filepath.Base(path) == ".gitignore" {
		if r, ok := w.filter.(reloader); ok {
			r.Reload()
			w.logger.Debug("reloaded ignore rules", "path", path)
		}
	}

	if w.filter.ShouldIgnore(path) {
		return
	}

	relativePath, ok := w.relative(path)
	if !ok {
		return
	}

	var op ChangeOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(relativePath, op)
}

func (w *Watcher) relative(path string) (string, bool) {
	relativePath, err := filepath.Rel(w.rootDir, path)
	if err != nil || relativePath == "." || relativePath == ".." ||
		strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(relativePath), true
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
