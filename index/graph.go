package index

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Graph is the reverse include index: canonical target path -> set of includer paths.
// Keys and members are absolute, cleaned paths. Entries are only ever added.
type Graph struct {
	includers map[string]map[string]struct{}
	edges     int
}

// NewGraph creates an empty reverse include index.
func NewGraph() *Graph {
	return &Graph{includers: make(map[string]map[string]struct{})}
}

// Add records that includer embeds target. Both paths are cleaned.
func (g *Graph) Add(target string, includer string) {
	target = filepath.Clean(target)
	includer = filepath.Clean(includer)

	set, ok := g.includers[target]
	if !ok {
		set = make(map[string]struct{})
		g.includers[target] = set
	}
	if _, exists := set[includer]; !exists {
		set[includer] = struct{}{}
		g.edges++
	}
}

// Has reports whether target is a known include target.
func (g *Graph) Has(target string) bool {
	_, ok := g.includers[filepath.Clean(target)]
	return ok
}

// Includers returns the includers of target in lexicographic order.
func (g *Graph) Includers(target string) []string {
	set := g.includers[filepath.Clean(target)]
	result := make([]string, 0, len(set))
	for includer := range set {
		result = append(result, includer)
	}
	sort.Strings(result)
	return result
}

// Targets returns every known target in lexicographic order.
func (g *Graph) Targets() []string {
	result := make([]string, 0, len(g.includers))
	for target := range g.includers {
		result = append(result, target)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of distinct targets.
func (g *Graph) Len() int {
	return len(g.includers)
}

// EdgeCount returns the number of distinct (target, includer) pairs.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// TargetsMatching returns the targets under rootDir whose root-relative path
// (forward slashes) matches a doublestar pattern, in lexicographic order.
func (g *Graph) TargetsMatching(rootDir string, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var result []string
	for _, target := range g.Targets() {
		relativePath, err := filepath.Rel(rootDir, target)
		if err != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
			continue
		}
		matched, err := doublestar.Match(pattern, filepath.ToSlash(relativePath))
		if err == nil && matched {
			result = append(result, target)
		}
	}
	return result, nil
}
