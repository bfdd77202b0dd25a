package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lexandro/docimpact/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The root command performs a single check.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docimpact",
		Short: "Report documentation pages affected by changes to included files",
		Long: `docimpact scans a reStructuredText documentation tree for include and
literalinclude directives, builds a reverse include index, and classifies the files
changed between two revisions into files included elsewhere (with every page that
includes them) and direct changes.

Changed files come from, in order of preference:
  --files / DOCIMPACT_MODIFIED_FILES   a list computed by the build pipeline
  --patch                              a unified diff file, "-" for stdin
  --base-ref and --head-ref            a git diff (CACHED_COMMIT_REF / COMMIT_REF)

Examples:
  docimpact --base-ref main --head-ref HEAD
  docimpact --files source/includes/steps.rst --deploy-url https://preview.example.com
  docimpact watch
  docimpact serve`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runCheck,
	}

	addConfigFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(),
		newWatchCmd(),
		newServeCmd(),
		newRegisterCmd(),
	)
	return root
}

// addConfigFlags registers the flags that map onto configuration keys.
func addConfigFlags(flags *pflag.FlagSet) {
	defaults := config.Default()

	flags.String("config", "", "Config file (default: ./docimpact.yaml when present)")
	flags.String("root", defaults.Root, "Documentation repository root")
	flags.String("mode", defaults.Mode, "Classification mode: index|substring")
	flags.String("addressing", defaults.Addressing, "Anchor for absolute-style targets: source|root")
	flags.String("source-dir", defaults.SourceDir, "Source directory relative to the root")
	flags.String("includes-dir", defaults.IncludesDir, "Includes folder relative to the source directory (substring mode)")
	flags.StringSlice("ext", defaults.Extensions, "Extensions scanned for include directives")
	flags.StringSlice("exclude", nil, "Extra ignore pattern (repeatable, doublestar syntax)")
	flags.Bool("gitignore", defaults.RespectGitignore, "Also skip paths ignored by the root .gitignore")
	flags.String("base-ref", "", "Base revision for the diff")
	flags.String("head-ref", "", "Head revision for the diff")
	flags.String("deploy-url", "", "Deploy preview base URL used for page links")
	flags.StringSlice("files", nil, "Changed files relative to the root; skips the git diff")
	flags.String("patch", "", "Unified diff listing the changed files (\"-\" for stdin); skips the git diff")
	flags.String("format", defaults.Report.Format, "Report file format: markdown|json|yaml")
	flags.String("output", "", "Also write the report to this file")
	flags.String("log-level", defaults.Log.Level, "Log level: debug|info|warn|error")
	flags.String("log-file", "", "Log file path (default: stderr)")
}

// loadConfig resolves the configuration for cmd from file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(configFile, cmd.Flags())
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
