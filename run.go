package main

import (
	"io"

	"github.com/lexandro/docimpact/checker"
	"github.com/lexandro/docimpact/config"
	"github.com/lexandro/docimpact/report"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one include impact check (the default command)",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

// runCheck is one build-hook invocation: collect changes, classify, report.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log.Level, cfg.Log.File)

	c, err := checker.New(cfg, nil, reportSink(cfg, cmd.OutOrStdout()), logger)
	if err != nil {
		return err
	}

	logger.Debug("starting include impact check",
		"root", c.RootDir(),
		"mode", cfg.Mode,
		"addressing", cfg.Addressing,
	)

	_, err = c.Run(cmd.Context())
	return err
}

// reportSink prints to out and, when configured, writes the report file too.
func reportSink(cfg *config.Config, out io.Writer) report.Sink {
	console := report.NewConsoleSink(out)
	if cfg.Report.Output == "" {
		return console
	}
	return report.MultiSink{
		console,
		&report.FileSink{Path: cfg.Report.Output, Format: report.Format(cfg.Report.Format)},
	}
}
