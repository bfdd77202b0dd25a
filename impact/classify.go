package impact

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lexandro/docimpact/index"
)

// Classify partitions changedFiles (paths relative to rootDir) using the reverse
// include index. A file is impacted when at least one of its includers lies inside
// rootDir; otherwise it is a direct change. Duplicate inputs are collapsed.
func Classify(changedFiles []string, graph *index.Graph, rootDir string) *Result {
	result := NewResult()
	rootDir = filepath.Clean(rootDir)

	for _, changed := range uniqueSorted(changedFiles) {
		target := filepath.Join(rootDir, filepath.FromSlash(changed))
		if !graph.Has(target) {
			result.Direct = append(result.Direct, changed)
			continue
		}

		var includers []string
		for _, includer := range graph.Includers(target) {
			if relativePath, ok := relativeInside(rootDir, includer); ok {
				includers = append(includers, relativePath)
			}
		}

		if len(includers) == 0 {
			result.Direct = append(result.Direct, changed)
			continue
		}
		result.Impacted[changed] = uniqueSorted(includers)
	}

	sort.Strings(result.Direct)
	return result
}

// relativeInside returns path relative to rootDir with forward slashes, and false
// when path is rootDir itself or lies outside it.
func relativeInside(rootDir string, path string) (string, bool) {
	relativePath, err := filepath.Rel(rootDir, path)
	if err != nil || relativePath == "." || relativePath == ".." ||
		strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) || filepath.IsAbs(relativePath) {
		return "", false
	}
	return filepath.ToSlash(relativePath), true
}
