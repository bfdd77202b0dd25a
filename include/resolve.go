package include

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Addressing selects how absolute-style targets (leading "/") are anchored.
type Addressing string

const (
	// AddressingSource anchors "/x" at <root>/<source dir>.
	AddressingSource Addressing = "source"
	// AddressingRoot anchors "/x" at the repository root.
	AddressingRoot Addressing = "root"
)

// ParseAddressing validates an addressing name. Empty means AddressingSource.
func ParseAddressing(s string) (Addressing, error) {
	switch Addressing(strings.ToLower(strings.TrimSpace(s))) {
	case "", AddressingSource:
		return AddressingSource, nil
	case AddressingRoot:
		return AddressingRoot, nil
	default:
		return "", fmt.Errorf("unknown addressing %q (want %q or %q)", s, AddressingSource, AddressingRoot)
	}
}

// Resolver maps a raw include target, seen in includer, to a canonical absolute path.
type Resolver interface {
	Resolve(target string, includer string) string
}

// anchoredResolver resolves absolute-style targets against a fixed anchor directory.
type anchoredResolver struct {
	anchor string
}

func (r anchoredResolver) Resolve(target string, includer string) string {
	return ResolveTarget(target, includer, r.anchor)
}

// NewResolver returns the Resolver for the given addressing convention.
func NewResolver(addressing Addressing, rootDir string, sourceDir string) Resolver {
	if addressing == AddressingRoot {
		return anchoredResolver{anchor: filepath.Clean(rootDir)}
	}
	return anchoredResolver{anchor: filepath.Clean(sourceDir)}
}

// ResolveTarget resolves target lexically. A target starting with "/" is taken
// relative to sourceDir, anything else relative to the includer's directory.
// The result is always cleaned; existence is never checked.
func ResolveTarget(target string, includerLocation string, sourceDir string) string {
	if strings.HasPrefix(target, "/") {
		return filepath.Join(sourceDir, filepath.FromSlash(strings.TrimPrefix(target, "/")))
	}
	return filepath.Join(filepath.Dir(includerLocation), filepath.FromSlash(target))
}
