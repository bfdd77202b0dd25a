package main

import (
	"time"

	"github.com/lexandro/docimpact/checker"
	"github.com/lexandro/docimpact/server"
	"github.com/lexandro/docimpact/tools"
	"github.com/lexandro/docimpact/vcs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the include index as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs go to stderr or the log file
	logger := setupLogger(cfg.Log.Level, cfg.Log.File)
	startTime := time.Now()

	// tool calls pass their own changes; nothing is reported to a sink
	c, err := checker.New(cfg, vcs.StaticSource{}, nil, logger)
	if err != nil {
		return err
	}

	logger.Info("starting docimpact MCP server",
		"root", c.RootDir(),
		"mode", cfg.Mode,
		"version", server.Version,
	)

	mcpServer := server.Setup(
		&tools.CheckHandler{Checker: c, Logger: logger},
		&tools.IncludersHandler{Checker: c, Logger: logger},
		&tools.StatusHandler{Checker: c, Config: cfg, StartTime: startTime, Logger: logger},
	)

	if err := mcpServer.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		return err
	}
	return nil
}
