// Package report renders classification results for the host build pipeline.
package report

import (
	"strings"
)

// linkRootSegment is the only top-level directory whose pages are published.
const linkRootSegment = "source"

// unlinkedSections are second-level directories that hold fragments, not pages.
var unlinkedSections = map[string]bool{
	"includes": true,
	"images":   true,
	"examples": true,
}

// MarkdownLink turns a repository-relative path into a Markdown link to its page on
// the deploy preview at baseURL. Paths that do not map to a published page, and
// every path when baseURL is empty, are returned unchanged.
func MarkdownLink(path string, baseURL string) string {
	if baseURL == "" {
		return path
	}

	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] != linkRootSegment {
		return path
	}
	if unlinkedSections[segments[1]] {
		return path
	}

	pagePath := strings.TrimPrefix(path, linkRootSegment+"/")
	if trimmed, ok := strings.CutSuffix(pagePath, ".txt"); ok {
		pagePath = trimmed
	} else if trimmed, ok := strings.CutSuffix(pagePath, ".rst"); ok {
		pagePath = trimmed
	}
	if !strings.HasPrefix(pagePath, "/") {
		pagePath = "/" + pagePath
	}

	return "[" + path + "](" + strings.TrimSuffix(baseURL, "/") + pagePath + ")"
}
