package impact

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lexandro/docimpact/docfile"
	"github.com/lexandro/docimpact/ignore"
	"github.com/lexandro/docimpact/include"
	"github.com/lexandro/docimpact/index"
)

// SubstringOptions configures a SubstringClassifier.
type SubstringOptions struct {
	RootDir     string
	SourceDir   string // source directory name relative to RootDir, e.g. "source"
	IncludesDir string // includes folder name relative to SourceDir, e.g. "includes"
	Files       index.FileSource
	Logger      *slog.Logger
}

// SubstringClassifier finds includers by literal directive text instead of a
// reverse index. Only changed files under <source>/<includes>/ can have includers,
// and only absolute-style directives ("/includes/...") are recognised.
type SubstringClassifier struct {
	rootDir     string
	sourceDir   string
	includesDir string
	files       index.FileSource
	logger      *slog.Logger
}

// NewSubstringClassifier creates a substring-mode classifier.
func NewSubstringClassifier(options SubstringOptions) *SubstringClassifier {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubstringClassifier{
		rootDir:     filepath.Clean(options.RootDir),
		sourceDir:   strings.Trim(filepath.ToSlash(options.SourceDir), "/"),
		includesDir: strings.Trim(filepath.ToSlash(options.IncludesDir), "/"),
		files:       options.Files,
		logger:      logger,
	}
}

// IncludesPrefix is the repository-relative folder whose files can be included.
func (c *SubstringClassifier) IncludesPrefix() string {
	return path.Join(c.sourceDir, c.includesDir) + "/"
}

// Classify partitions changedFiles. The tree is only read when at least one
// changed file lies under the includes folder.
func (c *SubstringClassifier) Classify(changedFiles []string) (*Result, error) {
	result := NewResult()

	var includeTargets []string
	for _, changed := range uniqueSorted(changedFiles) {
		if strings.HasPrefix(changed, c.IncludesPrefix()) {
			includeTargets = append(includeTargets, changed)
		} else {
			result.Direct = append(result.Direct, changed)
		}
	}
	if len(includeTargets) == 0 {
		return result, nil
	}

	contentIndex, err := c.loadContent()
	if err != nil {
		return nil, err
	}
	defer contentIndex.Close()

	for _, changed := range includeTargets {
		directivePath := "/" + strings.TrimPrefix(changed, c.sourceDir+"/")
		literals := make([]string, 0, len(include.Markers))
		for _, marker := range include.Markers {
			literals = append(literals, marker+" "+directivePath)
		}

		// the directory part tokenizes the same wherever the literal occurs
		includers, err := contentIndex.FilesContaining(path.Dir(directivePath), literals...)
		if err != nil {
			return nil, fmt.Errorf("matching includers of %s: %w", changed, err)
		}
		if len(includers) == 0 {
			result.Direct = append(result.Direct, changed)
			continue
		}
		result.Impacted[changed] = includers
	}

	result.Direct = uniqueSorted(result.Direct)
	return result, nil
}

// loadContent reads every eligible file under the root into a fresh content index.
func (c *SubstringClassifier) loadContent() (*index.ContentIndex, error) {
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		return nil, fmt.Errorf("creating content index: %w", err)
	}

	loaded := 0
	for absolutePath := range c.files.Files(c.rootDir) {
		relativePath, ok := relativeInside(c.rootDir, absolutePath)
		if !ok || ignore.IsContentExcluded(relativePath) {
			continue
		}
		content, err := os.ReadFile(absolutePath)
		if err != nil {
			c.logger.Debug("skipped unreadable file", "path", relativePath, "error", err)
			continue
		}
		if docfile.IsBinaryContent(content) {
			continue
		}
		if err := contentIndex.IndexFile(relativePath, string(content)); err != nil {
			contentIndex.Close()
			return nil, err
		}
		loaded++
	}

	c.logger.Debug("content index loaded",
		"root", c.rootDir,
		"files", loaded,
		"documents", contentIndex.DocumentCount(),
	)
	return contentIndex, nil
}
