package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/docimpact/checker"
	"github.com/lexandro/docimpact/vcs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CheckArgs defines the input parameters for the docimpact_check tool.
type CheckArgs struct {
	Files   []string `json:"files,omitempty" jsonschema:"Changed files relative to the documentation root (e.g. source/includes/steps.rst). Takes precedence over baseRef/headRef"`
	BaseRef string   `json:"baseRef,omitempty" jsonschema:"Base git revision to diff from (e.g. main)"`
	HeadRef string   `json:"headRef,omitempty" jsonschema:"Head git revision to diff to (default HEAD when baseRef is set)"`
}

// CheckHandler holds the dependencies for the check tool.
type CheckHandler struct {
	Checker *checker.Checker
	Logger  *slog.Logger
}

// Handle processes a docimpact_check request.
func (h *CheckHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args CheckArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if len(args.Files) == 0 && args.BaseRef == "" {
		h.Logger.Warn("docimpact_check called without files or refs")
		return errorResult("Error: either files or baseRef is required"), nil, nil
	}

	changed := args.Files
	var warning string
	if len(changed) == 0 {
		headRef := args.HeadRef
		if headRef == "" {
			headRef = "HEAD"
		}
		files, err := vcs.NewGitClient(h.Checker.RootDir()).DiffFiles(ctx, args.BaseRef, headRef)
		if err != nil {
			h.Logger.Warn("docimpact_check diff failed", "base", args.BaseRef, "head", headRef, "error", err)
			warning = fmt.Sprintf("Warning: could not diff %s..%s (%v); treating as no changes.\n\n", args.BaseRef, headRef, err)
		}
		changed = files
	}

	outcome, err := h.Checker.Evaluate(ctx, changed)
	if err != nil {
		h.Logger.Error("docimpact_check failed", "error", err)
		return errorResult(fmt.Sprintf("Check error: %v", err)), nil, nil
	}

	h.Logger.Info("docimpact_check",
		"run", outcome.RunID,
		"changed", len(outcome.Changed),
		"impacted", len(outcome.Result.Impacted),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: warning + FormatOutcome(outcome)}},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
