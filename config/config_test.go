package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty working directory with no host variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, name := range []string{"CACHED_COMMIT_REF", "COMMIT_REF", "DEPLOY_PRIME_URL"} {
		t.Setenv(name, "")
	}
	return dir
}

func Test_Load_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	defaults := Default()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, defaults.Mode, cfg.Mode)
	assert.Equal(t, defaults.Addressing, cfg.Addressing)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "source", cfg.SourceDir)
	assert.Equal(t, "includes", cfg.IncludesDir)
	assert.Equal(t, []string{".rst", ".txt"}, cfg.Extensions)
	assert.Empty(t, cfg.ModifiedFiles)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.HasRefs())
	assert.False(t, cfg.HasModifiedFiles())
}

func Test_Load_HostAliases(t *testing.T) {
	isolate(t)
	t.Setenv("CACHED_COMMIT_REF", "abc123")
	t.Setenv("COMMIT_REF", "def456")
	t.Setenv("DEPLOY_PRIME_URL", "https://deploy-preview-1.example.com")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.BaseRef)
	assert.Equal(t, "def456", cfg.HeadRef)
	assert.Equal(t, "https://deploy-preview-1.example.com", cfg.DeployURL)
	assert.True(t, cfg.HasRefs())
}

func Test_Load_PrefixedEnvWinsOverAlias(t *testing.T) {
	isolate(t)
	t.Setenv("CACHED_COMMIT_REF", "from-host")
	t.Setenv("DOCIMPACT_BASE_REF", "from-prefix")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-prefix", cfg.BaseRef)
}

func Test_Load_EnvLists(t *testing.T) {
	isolate(t)
	t.Setenv("DOCIMPACT_MODIFIED_FILES", "source/a.rst, source/includes/b.rst")
	t.Setenv("DOCIMPACT_ENABLED", "false")
	t.Setenv("DOCIMPACT_REPORT_FORMAT", "JSON")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, []string{"source/a.rst", "source/includes/b.rst"}, cfg.ModifiedFiles)
	assert.Equal(t, "json", cfg.Report.Format)
}

func Test_Load_ConfigFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	content := "mode: substring\naddressing: root\nsource_dir: docs\nreport:\n  format: yaml\n  output: impact.yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docimpact.yaml"), []byte(content), 0644))

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "substring", cfg.Mode)
	assert.Equal(t, "root", cfg.Addressing)
	assert.Equal(t, "docs", cfg.SourceDir)
	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, "impact.yaml", cfg.Report.Output)
}

func Test_Load_ExplicitConfigFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func Test_Load_FlagsOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DOCIMPACT_MODE", "substring")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("mode", "index", "")
	flags.String("root", ".", "")
	flags.StringSlice("files", nil, "")
	require.NoError(t, flags.Parse([]string{"--mode", "index", "--files", "source/a.rst,source/b.rst"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "index", cfg.Mode)
	assert.Equal(t, []string{"source/a.rst", "source/b.rst"}, cfg.ModifiedFiles)
}

func Test_Load_PatchFlag(t *testing.T) {
	isolate(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("patch", "", "")
	require.NoError(t, flags.Parse([]string{"--patch", "build/change.patch"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "build/change.patch", cfg.PatchFile)
	assert.True(t, cfg.HasPatchFile())
	assert.False(t, cfg.HasModifiedFiles())
}

func Test_Load_UnchangedFlagKeepsEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DOCIMPACT_MODE", "substring")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("mode", "index", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "substring", cfg.Mode)
}

func Test_Load_RejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("DOCIMPACT_MODE", "regex")

	_, err := Load("", nil)
	require.Error(t, err)

	var validationErrs ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "mode", validationErrs[0].Field)
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad addressing", func(c *Config) { c.Addressing = "relative" }, "addressing"},
		{"empty root", func(c *Config) { c.Root = " " }, "root"},
		{"absolute source dir", func(c *Config) { c.SourceDir = "/abs" }, "source_dir"},
		{"no extensions", func(c *Config) { c.Extensions = nil }, "extensions"},
		{"bad exclude", func(c *Config) { c.Exclude = []string{"[oops"} }, "exclude"},
		{"bad format", func(c *Config) { c.Report.Format = "html" }, "report.format"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}

	assert.Nil(t, Default().Validate())
}

func Test_ValidationErrors_Error(t *testing.T) {
	single := ValidationErrors{{Field: "mode", Value: "x", Message: "bad"}}
	assert.Equal(t, "mode: bad (got: x)", single.Error())

	multiple := ValidationErrors{
		{Field: "mode", Value: "x", Message: "bad"},
		{Field: "root", Value: "", Message: "empty"},
	}
	assert.Contains(t, multiple.Error(), "2 validation errors")
}
