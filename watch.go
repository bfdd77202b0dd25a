package main

import (
	"context"
	"log/slog"

	"github.com/lexandro/docimpact/checker"
	"github.com/lexandro/docimpact/vcs"
	"github.com/lexandro/docimpact/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the check whenever files under the root change",
		Long: `watch keeps running and classifies each debounced batch of saved files,
so authors see which pages an edit to a shared fragment reaches before pushing.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log.Level, cfg.Log.File)

	// batches replace the configured change source
	c, err := checker.New(cfg, vcs.StaticSource{}, reportSink(cfg, cmd.OutOrStdout()), logger)
	if err != nil {
		return err
	}

	fileWatcher, err := watcher.New(watcher.Options{
		RootDir: c.RootDir(),
		Filter:  c.Matcher(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer fileWatcher.Close()

	ctx := cmd.Context()
	go fileWatcher.Run(ctx)

	logger.Info("watching for changes", "root", c.RootDir(), "mode", cfg.Mode)
	return handleBatches(ctx, fileWatcher.Batches(), c, logger)
}

// handleBatches evaluates every batch until ctx is done.
func handleBatches(ctx context.Context, batches <-chan watcher.Batch, c *checker.Checker, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			logger.Debug("change batch", "files", len(batch))
			if _, err := c.Evaluate(ctx, batch.Paths()); err != nil {
				logger.Warn("check failed", "error", err)
			}
		}
	}
}
