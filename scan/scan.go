// Package scan walks a documentation tree and yields candidate files lazily.
package scan

import (
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/lexandro/docimpact/docfile"
)

// Policy selects which regular files the scanner yields.
type Policy int

const (
	// PolicyExtensions yields only files whose extension is in the configured set.
	PolicyExtensions Policy = iota
	// PolicyAllFiles yields every regular file and leaves filtering to the caller.
	PolicyAllFiles
)

// DirChecker is used by the scanner to prune directories and skip files.
type DirChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Scanner produces candidate documentation files under a root.
// A Scanner holds no traversal state; every call to Files starts a fresh walk.
type Scanner struct {
	checker    DirChecker
	policy     Policy
	extensions []string
	logger     *slog.Logger
}

// Options configures a Scanner.
type Options struct {
	Checker    DirChecker
	Policy     Policy
	Extensions []string // used by PolicyExtensions; defaults to docfile.DefaultExtensions
	Logger     *slog.Logger
}

// New creates a Scanner.
func New(options Options) *Scanner {
	extensions := options.Extensions
	if len(extensions) == 0 {
		extensions = docfile.DefaultExtensions
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		checker:    options.Checker,
		policy:     options.Policy,
		extensions: extensions,
		logger:     logger,
	}
}

// Files returns a lazy depth-first sequence of absolute file paths under root.
// The sequence is finite and may be ranged over any number of times.
func (s *Scanner) Files(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// WalkDir reports a failed ReadDir with the directory entry itself
				if d == nil || d.IsDir() {
					s.logger.Warn("skipping unreadable directory", "path", path, "error", err)
					if path == root || d == nil {
						return filepath.SkipAll
					}
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && s.skipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !s.accept(path) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (s *Scanner) skipDir(path string) bool {
	if s.checker == nil {
		return false
	}
	return s.checker.ShouldIgnoreDir(path)
}

func (s *Scanner) accept(path string) bool {
	if s.checker != nil && s.checker.ShouldIgnore(path) {
		return false
	}
	if s.policy == PolicyAllFiles {
		return true
	}
	return docfile.HasExtension(path, s.extensions)
}
