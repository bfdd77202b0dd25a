package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/docimpact/checker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// IncludersArgs defines the input parameters for the docimpact_includers tool.
type IncludersArgs struct {
	Pattern string `json:"pattern" jsonschema:"Glob pattern over included files relative to the root (e.g. source/includes/**)"`
}

// IncludersHandler holds the dependencies for the includers tool.
type IncludersHandler struct {
	Checker *checker.Checker
	Logger  *slog.Logger
}

// Handle processes a docimpact_includers request. The include index is rebuilt on
// every call.
func (h *IncludersHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args IncludersArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("docimpact_includers called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	graph, stats := h.Checker.BuildGraph(nil)
	rootDir := h.Checker.RootDir()

	targets, err := graph.TargetsMatching(rootDir, args.Pattern)
	if err != nil {
		h.Logger.Error("docimpact_includers failed", "pattern", args.Pattern, "error", err)
		return errorResult(fmt.Sprintf("Pattern error: %v", err)), nil, nil
	}

	entries := make([]IncluderEntry, 0, len(targets))
	for _, target := range targets {
		entry := IncluderEntry{Target: relativeTo(rootDir, target)}
		for _, includer := range graph.Includers(target) {
			entry.Includers = append(entry.Includers, relativeTo(rootDir, includer))
		}
		entries = append(entries, entry)
	}

	h.Logger.Info("docimpact_includers",
		"pattern", args.Pattern,
		"scanned", stats.FilesScanned,
		"targets", len(entries),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatIncluders(entries)}},
	}, nil, nil
}
