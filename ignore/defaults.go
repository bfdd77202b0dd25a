package ignore

import (
	"path/filepath"
	"strings"
)

// ExcludedDirs are never descended into: version-control metadata and the
// dependency cache.
var ExcludedDirs = []string{
	".git",
	"node_modules",
}

// ExcludedNamePrefix marks generated bundle files that are skipped in substring mode.
const ExcludedNamePrefix = "bundle"

// ExcludedExtension marks binary dumps that are skipped in substring mode.
const ExcludedExtension = ".bson"

// IsExcludedDir reports whether a directory name is one of ExcludedDirs.
func IsExcludedDir(name string) bool {
	for _, dir := range ExcludedDirs {
		if name == dir {
			return true
		}
	}
	return false
}

// IsContentExcluded applies the content-sensitive skip rules: file names starting
// with ExcludedNamePrefix and files with ExcludedExtension.
func IsContentExcluded(path string) bool {
	baseName := filepath.Base(filepath.FromSlash(path))
	if strings.HasPrefix(baseName, ExcludedNamePrefix) {
		return true
	}
	return strings.EqualFold(filepath.Ext(baseName), ExcludedExtension)
}
