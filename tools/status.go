package tools

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/lexandro/docimpact/checker"
	"github.com/lexandro/docimpact/config"
	"github.com/lexandro/docimpact/docfile"
	"github.com/lexandro/docimpact/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// topTargetsShown caps the "Most included" list.
const topTargetsShown = 5

// StatusArgs defines the input parameters for the docimpact_status tool (none required).
type StatusArgs struct{}

// StatusHandler reports the configuration and a freshly built include index.
type StatusHandler struct {
	Checker   *checker.Checker
	Config    *config.Config
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes a docimpact_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	graph, stats := h.Checker.BuildGraph(nil)
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("docimpact_status",
		"files", stats.FilesScanned,
		"targets", graph.Len(),
		"edges", graph.EdgeCount(),
	)

	var builder strings.Builder
	builder.WriteString("=== docimpact Status ===\n\n")
	fmt.Fprintf(&builder, "Root directory: %s\n", h.Checker.RootDir())
	fmt.Fprintf(&builder, "Source directory: %s\n", h.Config.SourceDir)
	fmt.Fprintf(&builder, "Mode: %s\n", h.Config.Mode)
	fmt.Fprintf(&builder, "Addressing: %s\n", h.Config.Addressing)
	fmt.Fprintf(&builder, "Extensions: %s\n", strings.Join(h.Config.Extensions, ", "))
	if len(h.Config.Exclude) > 0 {
		fmt.Fprintf(&builder, "Exclude: %s\n", strings.Join(h.Config.Exclude, ", "))
	}
	fmt.Fprintf(&builder, "Uptime: %s\n", formatDuration(uptime))
	fmt.Fprintf(&builder, "Candidate files: %d\n", stats.FilesScanned)
	fmt.Fprintf(&builder, "Include directives: %d\n", stats.Directives)
	fmt.Fprintf(&builder, "Included files: %d\n", graph.Len())
	fmt.Fprintf(&builder, "Memory in use: %s\n", formatFileSize(int64(memStats.HeapAlloc)))

	writeTargetFormats(&builder, graph)
	writeTopTargets(&builder, graph, h.Checker.RootDir())

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

// writeTargetFormats lists how many included files exist per markup format.
func writeTargetFormats(builder *strings.Builder, graph *index.Graph) {
	counts := make(map[string]int)
	for _, target := range graph.Targets() {
		counts[docfile.DetectFormat(target)]++
	}
	if len(counts) == 0 {
		return
	}

	formats := make([]string, 0, len(counts))
	for format := range counts {
		formats = append(formats, format)
	}
	slices.SortFunc(formats, func(a, b string) int {
		return cmp.Or(cmp.Compare(counts[b], counts[a]), cmp.Compare(a, b))
	})

	builder.WriteString("\nIncluded formats:\n")
	for _, format := range formats {
		fmt.Fprintf(builder, "  %-20s %d\n", format, counts[format])
	}
}

// writeTopTargets lists the targets with the most includers.
func writeTopTargets(builder *strings.Builder, graph *index.Graph, rootDir string) {
	targets := graph.Targets()
	if len(targets) == 0 {
		return
	}
	includerCount := make(map[string]int, len(targets))
	for _, target := range targets {
		includerCount[target] = len(graph.Includers(target))
	}
	slices.SortStableFunc(targets, func(a, b string) int {
		return cmp.Compare(includerCount[b], includerCount[a])
	})

	builder.WriteString("\nMost included:\n")
	for _, target := range targets[:min(len(targets), topTargetsShown)] {
		fmt.Fprintf(builder, "  %s (%d)\n", relativeTo(rootDir, target), includerCount[target])
	}
}

// formatDuration renders d to the second, dropping seconds once it passes an hour.
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Hour {
		return d.String()
	}
	return strings.TrimSuffix(d.Truncate(time.Minute).String(), "0s")
}
