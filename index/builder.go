package index

import (
	"iter"
	"log/slog"

	"github.com/lexandro/docimpact/include"
)

// FileSource yields candidate files under a root. scan.Scanner implements it.
type FileSource interface {
	Files(root string) iter.Seq[string]
}

// BuildStats summarises one index build.
type BuildStats struct {
	FilesScanned int
	Directives   int
}

// Build scans every candidate file under rootDir once, extracts its include
// directives and records each resolved target in a fresh Graph.
func Build(rootDir string, files FileSource, resolver include.Resolver, logger *slog.Logger) (*Graph, BuildStats) {
	graph := NewGraph()
	var stats BuildStats

	for path := range files.Files(rootDir) {
		stats.FilesScanned++
		for _, target := range include.ExtractFile(path) {
			graph.Add(resolver.Resolve(target, path), path)
			stats.Directives++
		}
	}

	logger.Debug("include index built",
		"root", rootDir,
		"files", stats.FilesScanned,
		"directives", stats.Directives,
		"targets", graph.Len(),
		"edges", graph.EdgeCount(),
	)
	return graph, stats
}
