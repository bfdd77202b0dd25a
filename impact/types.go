// Package impact partitions changed documentation files into files that other
// pages embed and direct changes.
package impact

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects the classification strategy.
type Mode string

const (
	ModeIndex     Mode = "index"     // reverse include index, absolute and relative targets
	ModeSubstring Mode = "substring" // literal directive match for files under the includes folder
)

// ParseMode validates a mode name. Empty means ModeIndex.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeIndex:
		return ModeIndex, nil
	case ModeSubstring:
		return ModeSubstring, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeIndex, ModeSubstring)
	}
}

// Result is the classification of a set of changed files.
// Every changed file appears in exactly one of Impacted and Direct.
type Result struct {
	// Impacted maps a changed file to its includers, all relative to the root and sorted.
	Impacted map[string][]string `json:"impacted" yaml:"impacted"`
	// Direct lists changed files with no known includer, sorted.
	Direct []string `json:"direct" yaml:"direct"`
}

// NewResult creates an empty Result.
func NewResult() *Result {
	return &Result{
		Impacted: make(map[string][]string),
		Direct:   make([]string, 0),
	}
}

// ImpactedFiles returns the keys of Impacted in lexicographic order.
func (r *Result) ImpactedFiles() []string {
	files := make([]string, 0, len(r.Impacted))
	for file := range r.Impacted {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Total returns the number of classified files.
func (r *Result) Total() int {
	return len(r.Impacted) + len(r.Direct)
}

// IsEmpty reports whether nothing was classified.
func (r *Result) IsEmpty() bool {
	return r.Total() == 0
}

// uniqueSorted returns the distinct values of in, sorted.
func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
