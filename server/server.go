package server

import (
	"github.com/lexandro/docimpact/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.3.0"

// Setup creates the MCP server and registers the docimpact tools.
func Setup(
	checkHandler *tools.CheckHandler,
	includersHandler *tools.IncludersHandler,
	statusHandler *tools.StatusHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "docimpact",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server reports which documentation pages are affected when files they include change.

- Use docimpact_check after editing shared fragments (for example files under source/includes/) to see every page that embeds them
- Use docimpact_includers to list the pages including any file matching a glob pattern
- The include index is rebuilt from disk on every call, so results always reflect the working tree`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "docimpact_check",
		Description: `Classify changed documentation files into files included by other pages (with their includers) and direct changes.

Input:
  - files: changed paths relative to the root (e.g. ["source/includes/steps.rst"])
  - or baseRef (+ optional headRef, default HEAD): diff two git revisions instead`,
	}, checkHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "docimpact_includers",
		Description: `List included files matching a glob pattern, each with the pages that include it.

Pattern examples:
  - "source/includes/**" - every shared fragment
  - "**/*.py" - code samples pulled in with literalinclude`,
	}, includersHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "docimpact_status",
		Description: "Show configuration, candidate file count, include directive count, memory usage and uptime.",
	}, statusHandler.Handle)

	return mcpServer
}
