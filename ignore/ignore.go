package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which paths the scanner and the watcher should skip.
// It combines the fixed excluded directories, optional .gitignore rules and custom
// doublestar patterns. Thread-safe: Reload() acquires a write lock, the Should* methods
// acquire a read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	respectGitignore bool
	gitIgnore        gitignore.GitIgnore
	customPatterns   []string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir          string
	CustomPatterns   []string
	RespectGitignore bool
}

// NewMatcher creates an ignore matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:          options.RootDir,
		respectGitignore: options.RespectGitignore,
		customPatterns:   normalizePatterns(options.CustomPatterns),
	}
	if matcher.respectGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}
	return matcher
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if IsExcludedDir(filepath.Base(absolutePath)) {
		return true
	}
	return m.matches(absolutePath, true)
}

// ShouldIgnore returns true if the given file path should be excluded.
// The path should be absolute or relative to the root directory.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	relativePath := m.relative(absolutePath)
	for _, part := range strings.Split(relativePath, "/") {
		if IsExcludedDir(part) {
			return true
		}
	}
	return m.matches(absolutePath, false)
}

// ShouldIgnoreRelative is ShouldIgnore for a repository-relative path.
func (m *Matcher) ShouldIgnoreRelative(relativePath string) bool {
	return m.ShouldIgnore(filepath.Join(m.rootDir, filepath.FromSlash(relativePath)))
}

func (m *Matcher) matches(absolutePath string, isDir bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath := m.relative(absolutePath)

	// Relative() does not require the file to exist on disk
	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// relative returns the path relative to root with forward slashes.
func (m *Matcher) relative(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	relativePath, err := filepath.Rel(m.rootDir, path)
	if err != nil {
		relativePath = path
	}
	return filepath.ToSlash(relativePath)
}

// matchesCustomPatterns checks the path and its basename against the exclude patterns.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore from disk. No-op when gitignore support is off.
func (m *Matcher) Reload() {
	if !m.respectGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// normalizePatterns drops invalid doublestar patterns and converts separators.
func normalizePatterns(patterns []string) []string {
	valid := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.ReplaceAll(strings.TrimSpace(pattern), "\\", "/")
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			continue
		}
		valid = append(valid, pattern)
	}
	return valid
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
