package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	unicodetokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// pathAnalyzer tokenizes on unicode word boundaries and lowercases, without stop
// words, so path fragments like "includes/steps-to-the-end.rst" keep every token.
const pathAnalyzer = "docpath"

// ContentIndex holds the raw text of scanned files in a Bleve in-memory index.
// It answers "which files contain this literal text" for substring-mode checks.
type ContentIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// fileContents keeps the raw text for the final literal comparison
	fileContents map[string]string // key: relative path, value: file content
}

// NewContentIndex creates a new in-memory Bleve content index.
func NewContentIndex() (*ContentIndex, error) {
	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, err
	}
	bleveIndex, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	return &ContentIndex{
		index:        bleveIndex,
		fileContents: make(map[string]string),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}

// buildIndexMapping creates the Bleve index mapping for documentation content.
func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(pathAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicodetokenizer.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("registering %s analyzer: %w", pathAnalyzer, err)
	}

	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = pathAnalyzer
	contentFieldMapping.Store = false // raw text lives in fileContents
	contentFieldMapping.IncludeTermVectors = true
	contentFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	pathFieldMapping := bleve.NewKeywordFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = pathAnalyzer
	return indexMapping, nil
}

// IndexFile adds or updates a file's content in the index.
func (ci *ContentIndex) IndexFile(relativePath string, content string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	ci.fileContents[relativePath] = content

	doc := bleveDocument{Content: content, Path: relativePath}
	if err := ci.index.Index(relativePath, doc); err != nil {
		return fmt.Errorf("indexing file %s: %w", relativePath, err)
	}
	return nil
}

// FilesContaining returns the relative paths of indexed files whose content contains
// any of literals, sorted. The literal comparison alone decides. anchor only narrows
// the candidates through a phrase query, so it must be a fragment of every literal
// whose tokens do not depend on the surrounding text, such as a directory path
// bounded by slashes.
func (ci *ContentIndex) FilesContaining(anchor string, literals ...string) ([]string, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	candidates, err := ci.candidates(anchor)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, relativePath := range candidates {
		content := ci.fileContents[relativePath]
		for _, literal := range literals {
			if strings.Contains(content, literal) {
				result = append(result, relativePath)
				break
			}
		}
	}
	sort.Strings(result)
	return result, nil
}

// candidates runs the phrase query for anchor. Anchors without any word characters
// produce no tokens, so every indexed file is a candidate.
func (ci *ContentIndex) candidates(anchor string) ([]string, error) {
	if strings.IndexFunc(anchor, isWordRune) < 0 {
		all := make([]string, 0, len(ci.fileContents))
		for relativePath := range ci.fileContents {
			all = append(all, relativePath)
		}
		return all, nil
	}

	docCount, err := ci.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if docCount == 0 {
		return nil, nil
	}

	phraseQuery := bleve.NewMatchPhraseQuery(anchor)
	phraseQuery.SetField("content")
	phraseQuery.Analyzer = pathAnalyzer

	searchRequest := bleve.NewSearchRequest(phraseQuery)
	searchRequest.Size = int(docCount)

	searchResults, err := ci.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	paths := make([]string, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// DocumentCount returns the number of documents in the Bleve index.
func (ci *ContentIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ci *ContentIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}
