package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Sink receives status updates.
type Sink interface {
	Report(ctx context.Context, status Status) error
}

// ConsoleSink prints a status to a terminal or a build log.
type ConsoleSink struct {
	out        io.Writer
	titleStyle lipgloss.Style
	dimStyle   lipgloss.Style
}

// NewConsoleSink creates a ConsoleSink writing to out. Styling is dropped
// automatically when out is not a terminal.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	renderer := lipgloss.NewRenderer(out)
	return &ConsoleSink{
		out:        out,
		titleStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dimStyle:   renderer.NewStyle().Faint(true),
	}
}

// Report implements Sink.
func (s *ConsoleSink) Report(ctx context.Context, status Status) error {
	header := s.titleStyle.Render(status.Title)
	if status.RunID != "" {
		header += " " + s.dimStyle.Render("("+status.RunID+")")
	}
	_, err := fmt.Fprintf(s.out, "%s\n%s\n\n%s", header, status.Summary, status.Text)
	if err == nil && len(status.Text) > 0 && status.Text[len(status.Text)-1] != '\n' {
		_, err = io.WriteString(s.out, "\n")
	}
	return err
}

// Format is a report file encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// FileSink writes the latest status to a file, replacing earlier content.
type FileSink struct {
	Path   string
	Format Format
}

// Report implements Sink.
func (s *FileSink) Report(ctx context.Context, status Status) error {
	data, err := Encode(status, s.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", s.Path, err)
	}
	return nil
}

// Encode serializes status in the given format.
func Encode(status Status, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown, "":
		return []byte(fmt.Sprintf("# %s\n\n%s\n\n%s", status.Title, status.Summary, status.Text)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json report: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(status)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MultiSink fans a status out to several sinks. Every sink is tried; the errors
// are joined.
type MultiSink []Sink

// Report implements Sink.
func (m MultiSink) Report(ctx context.Context, status Status) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Report(ctx, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
