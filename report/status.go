package report

import (
	"fmt"
	"strings"

	"github.com/lexandro/docimpact/impact"
)

// Title is the heading of every status posted by docimpact.
const Title = "Include impact"

// NoChangesSummary is the summary posted when no relevant file changed.
const NoChangesSummary = "No relevant file changes detected."

// Status is one structured status update for the build pipeline UI.
type Status struct {
	RunID   string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Title   string         `json:"title" yaml:"title"`
	Summary string         `json:"summary" yaml:"summary"`
	Text    string         `json:"text" yaml:"text"`
	Result  *impact.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// NoChangesStatus is reported when the changed-file list is empty after filtering.
func NoChangesStatus() Status {
	return Status{
		Title:   Title,
		Summary: NoChangesSummary,
		Text:    NoChangesSummary,
	}
}

// BuildStatus renders a classification result. Paths become deploy preview links
// when baseURL is set.
func BuildStatus(result *impact.Result, baseURL string) Status {
	if result == nil || result.IsEmpty() {
		return NoChangesStatus()
	}

	var builder strings.Builder

	if len(result.Impacted) > 0 {
		builder.WriteString("## Changed files included by other pages\n\n")
		for _, changed := range result.ImpactedFiles() {
			builder.WriteString(fmt.Sprintf("- %s\n", MarkdownLink(changed, baseURL)))
			for _, includer := range result.Impacted[changed] {
				builder.WriteString(fmt.Sprintf("  - %s\n", MarkdownLink(includer, baseURL)))
			}
		}
	}

	if len(result.Direct) > 0 {
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("## Direct changes\n\n")
		for _, changed := range result.Direct {
			builder.WriteString(fmt.Sprintf("- %s\n", MarkdownLink(changed, baseURL)))
		}
	}

	return Status{
		Title:   Title,
		Summary: summarize(result),
		Text:    builder.String(),
		Result:  result,
	}
}

func summarize(result *impact.Result) string {
	pages := make(map[string]struct{})
	for _, includers := range result.Impacted {
		for _, includer := range includers {
			pages[includer] = struct{}{}
		}
	}
	return fmt.Sprintf("%s changed: %d included elsewhere (%s affected), %d direct.",
		plural(result.Total(), "file"),
		len(result.Impacted),
		plural(len(pages), "page"),
		len(result.Direct),
	)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
