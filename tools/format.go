package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lexandro/docimpact/checker"
)

// FormatOutcome renders a check as plain Markdown: summary line, then the report body.
func FormatOutcome(outcome *checker.Outcome) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s\n\n", outcome.Status.Summary))
	if outcome.Status.Text != outcome.Status.Summary {
		builder.WriteString(outcome.Status.Text)
	}
	return builder.String()
}

// IncluderEntry is one target with the files that include it, all root-relative.
type IncluderEntry struct {
	Target    string
	Includers []string
}

// FormatIncluders renders targets and their includers as an indented list.
func FormatIncluders(entries []IncluderEntry) string {
	if len(entries) == 0 {
		return "No included files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d included files:\n\n", len(entries)))

	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("── %s (%d includers) ──\n", entry.Target, len(entry.Includers)))
		for _, includer := range entry.Includers {
			builder.WriteString(fmt.Sprintf("  %s\n", includer))
		}
	}

	return builder.String()
}

// relativeTo returns path relative to rootDir with forward slashes, or path itself
// when it cannot be made relative.
func relativeTo(rootDir string, path string) string {
	relativePath, err := filepath.Rel(rootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relativePath)
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
