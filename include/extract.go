// Package include finds include directives in documentation sources and resolves
// their targets to canonical locations.
package include

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/lexandro/docimpact/docfile"
)

// Directive markers recognised at the start of a trimmed line.
const (
	IncludeMarker        = ".. include::"
	LiteralIncludeMarker = ".. literalinclude::"
)

// Markers lists every recognised directive marker.
var Markers = []string{IncludeMarker, LiteralIncludeMarker}

const maxLineBytes = 1024 * 1024

// ExtractFile returns the raw include targets found in the file at path, in order.
// A missing, non-regular, binary or unreadable file yields an empty result.
func ExtractFile(path string) []string {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	head, _ := reader.Peek(512)
	if docfile.IsBinaryContent(head) {
		return nil
	}
	return Extract(reader)
}

// Extract scans r line by line and returns the raw include targets in order.
// Malformed directives are skipped. A read error ends the scan and whatever was
// collected so far is returned.
func Extract(r io.Reader) []string {
	var targets []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if target, ok := ParseDirective(scanner.Text()); ok {
			targets = append(targets, target)
		}
	}
	return targets
}

// ParseDirective returns the raw target of a single include directive line.
// ok is false when the line is not a directive or has an empty target.
func ParseDirective(line string) (target string, ok bool) {
	line = strings.TrimSpace(line)
	if !hasMarker(line) {
		return "", false
	}
	_, rest, found := strings.Cut(line, "::")
	if !found {
		return "", false
	}
	target = strings.TrimSpace(rest)
	return target, target != ""
}

func hasMarker(line string) bool {
	for _, marker := range Markers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
