package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/docimpact/impact"
	"github.com/lexandro/docimpact/include"
)

// ValidationError is a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every validation failure of one Config.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels lists the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidReportFormats lists the accepted report.format values.
func ValidReportFormats() []string {
	return []string{"markdown", "json", "yaml"}
}

// Validate returns every invalid value in c, or nil.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if _, err := impact.ParseMode(c.Mode); err != nil {
		errs = append(errs, ValidationError{Field: "mode", Value: c.Mode, Message: err.Error()})
	}
	if _, err := include.ParseAddressing(c.Addressing); err != nil {
		errs = append(errs, ValidationError{Field: "addressing", Value: c.Addressing, Message: err.Error()})
	}
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, ValidationError{Field: "root", Value: c.Root, Message: "must not be empty"})
	}
	if c.SourceDir == "" || filepath.IsAbs(c.SourceDir) {
		errs = append(errs, ValidationError{Field: "source_dir", Value: c.SourceDir, Message: "must be a relative directory name"})
	}
	if c.IncludesDir == "" || filepath.IsAbs(c.IncludesDir) {
		errs = append(errs, ValidationError{Field: "includes_dir", Value: c.IncludesDir, Message: "must be a relative directory name"})
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, ValidationError{Field: "extensions", Value: c.Extensions, Message: "must list at least one extension"})
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			errs = append(errs, ValidationError{Field: "exclude", Value: pattern, Message: "invalid glob pattern"})
		}
	}
	if !slices.Contains(ValidReportFormats(), c.Report.Format) {
		errs = append(errs, ValidationError{
			Field:   "report.format",
			Value:   c.Report.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidReportFormats(), ", ")),
		})
	}
	if c.Log.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
