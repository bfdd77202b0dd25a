// Package config loads the docimpact run configuration from defaults, an optional
// YAML file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DOCIMPACT"

// DefaultConfigName is the file name (without extension) searched in the working directory.
const DefaultConfigName = "docimpact"

// Config is the complete docimpact configuration.
type Config struct {
	Enabled          bool         `mapstructure:"enabled" yaml:"enabled"`
	Mode             string       `mapstructure:"mode" yaml:"mode"`
	Addressing       string       `mapstructure:"addressing" yaml:"addressing"`
	Root             string       `mapstructure:"root" yaml:"root"`
	SourceDir        string       `mapstructure:"source_dir" yaml:"source_dir"`
	IncludesDir      string       `mapstructure:"includes_dir" yaml:"includes_dir"`
	Extensions       []string     `mapstructure:"extensions" yaml:"extensions"`
	Exclude          []string     `mapstructure:"exclude" yaml:"exclude"`
	RespectGitignore bool         `mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
	BaseRef          string       `mapstructure:"base_ref" yaml:"base_ref"`
	HeadRef          string       `mapstructure:"head_ref" yaml:"head_ref"`
	DeployURL        string       `mapstructure:"deploy_url" yaml:"deploy_url"`
	ModifiedFiles    []string     `mapstructure:"modified_files" yaml:"modified_files"`
	PatchFile        string       `mapstructure:"patch_file" yaml:"patch_file"`
	Report           ReportConfig `mapstructure:"report" yaml:"report"`
	Log              LogConfig    `mapstructure:"log" yaml:"log"`
}

// ReportConfig controls the optional report file written next to the console output.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // markdown, json or yaml
	Output string `mapstructure:"output" yaml:"output"` // empty disables the file
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		Enabled:     true,
		Mode:        "index",
		Addressing:  "source",
		Root:        ".",
		SourceDir:   "source",
		IncludesDir: "includes",
		Extensions:  []string{".rst", ".txt"},
		Exclude:     []string{},
		Report: ReportConfig{
			Format: "markdown",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// hostAliases maps keys to environment variables set by the hosting build pipeline.
// The prefixed variable always wins over the alias.
var hostAliases = map[string]string{
	"base_ref":   "CACHED_COMMIT_REF",
	"head_ref":   "COMMIT_REF",
	"deploy_url": "DEPLOY_PRIME_URL",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"root":         "root",
	"mode":         "mode",
	"addressing":   "addressing",
	"source-dir":   "source_dir",
	"includes-dir": "includes_dir",
	"ext":          "extensions",
	"exclude":      "exclude",
	"gitignore":    "respect_gitignore",
	"base-ref":     "base_ref",
	"head-ref":     "head_ref",
	"deploy-url":   "deploy_url",
	"files":        "modified_files",
	"patch":        "patch_file",
	"format":       "report.format",
	"output":       "report.output",
	"log-level":    "log.level",
	"log-file":     "log.file",
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("enabled", defaults.Enabled)
	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("addressing", defaults.Addressing)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("source_dir", defaults.SourceDir)
	v.SetDefault("includes_dir", defaults.IncludesDir)
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("respect_gitignore", defaults.RespectGitignore)
	v.SetDefault("base_ref", "")
	v.SetDefault("head_ref", "")
	v.SetDefault("deploy_url", "")
	v.SetDefault("modified_files", []string{})
	v.SetDefault("patch_file", "")
	v.SetDefault("report.format", defaults.Report.Format)
	v.SetDefault("report.output", "")
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", "")
}

// Load builds a Config. configFile may be empty, in which case docimpact.yaml in
// the working directory is used when present. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range hostAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// normalize trims list entries and drops empty ones.
func (c *Config) normalize() {
	c.Extensions = cleanList(c.Extensions)
	c.Exclude = cleanList(c.Exclude)
	c.ModifiedFiles = cleanList(c.ModifiedFiles)
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Addressing = strings.ToLower(strings.TrimSpace(c.Addressing))
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// RootPath returns the absolute documentation root.
func (c *Config) RootPath() (string, error) {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", c.Root, err)
	}
	return root, nil
}

// HasModifiedFiles reports whether the host pipeline supplied the changed files.
func (c *Config) HasModifiedFiles() bool {
	return len(c.ModifiedFiles) > 0
}

// HasPatchFile reports whether changed files are read from a unified diff.
func (c *Config) HasPatchFile() bool {
	return strings.TrimSpace(c.PatchFile) != ""
}

// HasRefs reports whether both diff references are set.
func (c *Config) HasRefs() bool {
	return strings.TrimSpace(c.BaseRef) != "" && strings.TrimSpace(c.HeadRef) != ""
}
