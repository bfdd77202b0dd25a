// Package checker runs one include-impact check: collect the changed files,
// classify them and report the result.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lexandro/docimpact/config"
	"github.com/lexandro/docimpact/ignore"
	"github.com/lexandro/docimpact/impact"
	"github.com/lexandro/docimpact/include"
	"github.com/lexandro/docimpact/index"
	"github.com/lexandro/docimpact/report"
	"github.com/lexandro/docimpact/scan"
	"github.com/lexandro/docimpact/vcs"
)

// ErrMisconfigured is returned when the check is enabled but cannot determine the
// changed files because the host pipeline supplied neither a list nor both refs.
var ErrMisconfigured = errors.New("docimpact misconfigured")

// Outcome describes one check.
type Outcome struct {
	RunID   string
	Skipped bool
	Changed []string
	Result  *impact.Result
	Status  report.Status
}

// Checker holds everything a run needs. It keeps no state between runs.
type Checker struct {
	cfg        *config.Config
	rootDir    string
	mode       impact.Mode
	addressing include.Addressing
	source     vcs.Source
	sink       report.Sink
	logger     *slog.Logger
}

// New validates cfg and creates a Checker. source may be nil, in which case it is
// derived from cfg: the native modified-file list when present, otherwise a git diff
// between the configured refs. A nil source on an enabled config without refs
// returns ErrMisconfigured.
func New(cfg *config.Config, source vcs.Source, sink report.Sink, logger *slog.Logger) (*Checker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	mode, _ := impact.ParseMode(cfg.Mode)
	addressing, _ := include.ParseAddressing(cfg.Addressing)

	rootDir, err := cfg.RootPath()
	if err != nil {
		return nil, err
	}

	if source == nil && cfg.Enabled {
		source, err = SourceFor(cfg, rootDir)
		if err != nil {
			return nil, err
		}
	}

	return &Checker{
		cfg:        cfg,
		rootDir:    rootDir,
		mode:       mode,
		addressing: addressing,
		source:     source,
		sink:       sink,
		logger:     logger,
	}, nil
}

// SourceFor picks the change source described by cfg.
func SourceFor(cfg *config.Config, rootDir string) (vcs.Source, error) {
	if cfg.HasModifiedFiles() {
		return vcs.StaticSource(cfg.ModifiedFiles), nil
	}
	if cfg.HasPatchFile() {
		return vcs.PatchFile(cfg.PatchFile), nil
	}
	if !cfg.HasRefs() {
		return nil, fmt.Errorf("%w: base and head refs are required when no modified files or patch are supplied (base=%q head=%q)",
			ErrMisconfigured, cfg.BaseRef, cfg.HeadRef)
	}
	return vcs.RefRange{Client: vcs.NewGitClient(rootDir), Base: cfg.BaseRef, Head: cfg.HeadRef}, nil
}

// RootDir returns the absolute documentation root.
func (c *Checker) RootDir() string {
	return c.rootDir
}

// Run performs one check and reports it. A failing change source is logged and
// treated as no changes.
func (c *Checker) Run(ctx context.Context) (*Outcome, error) {
	if !c.cfg.Enabled {
		c.logger.Info("include impact check disabled")
		return &Outcome{RunID: uuid.NewString(), Skipped: true}, nil
	}

	changed, err := c.source.ChangedFiles(ctx)
	if err != nil {
		c.logger.Warn("could not list changed files, continuing with none", "error", err)
		changed = nil
	}

	return c.Evaluate(ctx, changed)
}

// Evaluate classifies the given changed files and reports the result.
func (c *Checker) Evaluate(ctx context.Context, changed []string) (*Outcome, error) {
	outcome := &Outcome{
		RunID:   uuid.NewString(),
		Changed: c.relevant(changed),
	}

	if len(outcome.Changed) == 0 {
		outcome.Result = impact.NewResult()
		outcome.Status = report.NoChangesStatus()
	} else {
		result, err := c.Classify(outcome.Changed)
		if err != nil {
			return nil, err
		}
		outcome.Result = result
		outcome.Status = report.BuildStatus(result, c.cfg.DeployURL)
	}
	outcome.Status.RunID = outcome.RunID

	c.logger.Info("include impact check complete",
		"run", outcome.RunID,
		"mode", c.mode,
		"changed", len(outcome.Changed),
		"impacted", len(outcome.Result.Impacted),
		"direct", len(outcome.Result.Direct),
	)

	if c.sink != nil {
		if err := c.sink.Report(ctx, outcome.Status); err != nil {
			return outcome, fmt.Errorf("reporting status: %w", err)
		}
	}
	return outcome, nil
}

// Classify runs the configured classification over already filtered paths.
func (c *Checker) Classify(changed []string) (*impact.Result, error) {
	matcher := c.Matcher()

	if c.mode == impact.ModeSubstring {
		classifier := impact.NewSubstringClassifier(impact.SubstringOptions{
			RootDir:     c.rootDir,
			SourceDir:   c.cfg.SourceDir,
			IncludesDir: c.cfg.IncludesDir,
			Files:       c.Scanner(matcher, scan.PolicyAllFiles),
			Logger:      c.logger,
		})
		return classifier.Classify(changed)
	}

	graph, _ := c.BuildGraph(matcher)
	return impact.Classify(changed, graph, c.rootDir), nil
}

// BuildGraph scans the tree and builds a fresh include index.
func (c *Checker) BuildGraph(matcher *ignore.Matcher) (*index.Graph, index.BuildStats) {
	if matcher == nil {
		matcher = c.Matcher()
	}
	resolver := include.NewResolver(c.addressing, c.rootDir, filepath.Join(c.rootDir, c.cfg.SourceDir))
	return index.Build(c.rootDir, c.Scanner(matcher, scan.PolicyExtensions), resolver, c.logger)
}

// Matcher returns the ignore rules for the configured root.
func (c *Checker) Matcher() *ignore.Matcher {
	return ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          c.rootDir,
		CustomPatterns:   c.cfg.Exclude,
		RespectGitignore: c.cfg.RespectGitignore,
	})
}

// Scanner returns a tree scanner for the given policy.
func (c *Checker) Scanner(matcher *ignore.Matcher, policy scan.Policy) *scan.Scanner {
	return scan.New(scan.Options{
		Checker:    matcher,
		Policy:     policy,
		Extensions: c.cfg.Extensions,
		Logger:     c.logger,
	})
}

// relevant normalizes changed paths and drops the ones the scanner would never
// visit. Substring mode also drops content-excluded files.
func (c *Checker) relevant(changed []string) []string {
	matcher := c.Matcher()
	seen := make(map[string]struct{}, len(changed))
	files := make([]string, 0, len(changed))

	for _, path := range changed {
		path = normalizePath(path)
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}

		if matcher.ShouldIgnoreRelative(path) {
			c.logger.Debug("ignoring changed file", "path", path)
			continue
		}
		if c.mode == impact.ModeSubstring && ignore.IsContentExcluded(path) {
			c.logger.Debug("ignoring content-excluded file", "path", path)
			continue
		}
		files = append(files, path)
	}
	return files
}

func normalizePath(path string) string {
	path = strings.TrimSpace(filepath.ToSlash(path))
	if path == "" {
		return ""
	}
	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return ""
	}
	return cleaned
}
