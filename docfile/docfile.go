package docfile

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the documentation source extensions scanned for include directives.
var DefaultExtensions = []string{".rst", ".txt"}

// ExtensionToFormat maps documentation extensions (without dot) to markup names.
var ExtensionToFormat = map[string]string{
	// Markup
	"rst": "reStructuredText", "txt": "reStructuredText",
	"md": "Markdown", "mdx": "Markdown",
	// Structured step / option files
	"yaml": "YAML", "yml": "YAML",
	// literalinclude targets
	"py": "Code sample", "js": "Code sample", "sh": "Code sample", "json": "Code sample",
}

// DetectFormat returns the markup format for a file path based on its extension.
// Returns "Unknown" if the extension is not recognized.
func DetectFormat(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if format, ok := ExtensionToFormat[ext]; ok {
		return format
	}
	return "Unknown"
}

// HasExtension reports whether filePath ends in one of extensions.
// Comparison is case-insensitive and tolerates extensions given without a dot.
func HasExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return false
	}
	for _, candidate := range extensions {
		candidate = strings.ToLower(candidate)
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if ext == candidate {
			return true
		}
	}
	return false
}
