package impact

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/lexandro/docimpact/ignore"
	"github.com/lexandro/docimpact/include"
	"github.com/lexandro/docimpact/index"
	"github.com/lexandro/docimpact/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func buildGraph(t *testing.T, root string) *index.Graph {
	t.Helper()
	scanner := scan.New(scan.Options{
		Checker: ignore.NewMatcher(ignore.MatcherOptions{RootDir: root}),
		Logger:  testLogger(),
	})
	resolver := include.NewResolver(include.AddressingSource, root, filepath.Join(root, "source"))
	graph, _ := index.Build(root, scanner, resolver, testLogger())
	return graph
}

func newSubstring(root string) *SubstringClassifier {
	return NewSubstringClassifier(SubstringOptions{
		RootDir:     root,
		SourceDir:   "source",
		IncludesDir: "includes",
		Files: scan.New(scan.Options{
			Checker: ignore.NewMatcher(ignore.MatcherOptions{RootDir: root}),
			Policy:  scan.PolicyAllFiles,
			Logger:  testLogger(),
		}),
		Logger: testLogger(),
	})
}

func Test_ParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeIndex, false},
		{"index", ModeIndex, false},
		{" Substring ", ModeSubstring, false},
		{"regex", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func Test_Classify_IncludedFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/page.rst":         ".. include:: /includes/foo.rst\n",
		"source/includes/foo.rst": "shared\n",
	})

	result := Classify([]string{"source/includes/foo.rst"}, buildGraph(t, root), root)

	assert.Equal(t, map[string][]string{"source/includes/foo.rst": {"source/page.rst"}}, result.Impacted)
	assert.Empty(t, result.Direct)
}

func Test_Classify_DirectChange(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/other.rst": "standalone page\n",
	})

	result := Classify([]string{"source/other.rst"}, buildGraph(t, root), root)

	assert.Empty(t, result.Impacted)
	assert.Equal(t, []string{"source/other.rst"}, result.Direct)
}

func Test_Classify_IncludersSortedAndUnique(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/zeta.rst":          ".. include:: /includes/foo.rst\n\nagain\n\n.. include:: /includes/foo.rst\n",
		"source/alpha.rst":         ".. include:: includes/foo.rst\n",
		"source/includes/foo.rst":  "shared\n",
		"source/includes/note.rst": "unused\n",
	})

	result := Classify([]string{"source/includes/foo.rst"}, buildGraph(t, root), root)

	assert.Equal(t, []string{"source/alpha.rst", "source/zeta.rst"}, result.Impacted["source/includes/foo.rst"])
}

func Test_Classify_Partition(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/a.rst":          ".. include:: /includes/x.rst\n",
		"source/b.rst":          ".. literalinclude:: /code/y.py\n",
		"source/includes/x.rst": "x\n",
		"source/code/y.py":      "print('y')\n",
		"source/c.rst":          "plain\n",
	})
	changed := []string{"source/includes/x.rst", "source/code/y.py", "source/c.rst", "source/c.rst", "deleted.rst"}

	result := Classify(changed, buildGraph(t, root), root)

	assert.Equal(t, 4, result.Total())
	for _, file := range []string{"source/includes/x.rst", "source/code/y.py", "source/c.rst", "deleted.rst"} {
		_, impacted := result.Impacted[file]
		direct := slices.Contains(result.Direct, file)
		assert.NotEqual(t, impacted, direct, "%s must be in exactly one bucket", file)
	}
	assert.Equal(t, []string{"source/code/y.py", "source/includes/x.rst"}, result.ImpactedFiles())
	assert.Equal(t, []string{"deleted.rst", "source/c.rst"}, result.Direct)
}

func Test_Classify_RejectsIncludersOutsideRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")
	graph := index.NewGraph()
	graph.Add(filepath.Join(root, "source", "includes", "a.rst"), filepath.Join(string(filepath.Separator), "elsewhere", "page.rst"))
	graph.Add(filepath.Join(root, "source", "includes", "b.rst"), filepath.Join(string(filepath.Separator), "elsewhere", "page.rst"))
	graph.Add(filepath.Join(root, "source", "includes", "b.rst"), filepath.Join(root, "source", "page.rst"))

	result := Classify([]string{"source/includes/a.rst", "source/includes/b.rst"}, graph, root)

	assert.Equal(t, []string{"source/includes/a.rst"}, result.Direct)
	assert.Equal(t, []string{"source/page.rst"}, result.Impacted["source/includes/b.rst"])
}

func Test_Classify_EmptyInput(t *testing.T) {
	result := Classify(nil, index.NewGraph(), t.TempDir())
	assert.True(t, result.IsEmpty())
	assert.NotNil(t, result.Direct)
}

func Test_Substring_MatchesDirectives(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/page.rst":           ".. include:: /includes/foo.rst\n",
		"source/code.txt":           ".. literalinclude:: /includes/foo.rst\n",
		"source/relative.rst":       ".. include:: includes/foo.rst\n",
		"source/includes/foo.rst":   "shared\n",
		"source/bundle-all.rst":     ".. include:: /includes/foo.rst\n",
		"source/data/dump.bson":     ".. include:: /includes/foo.rst\n",
		"node_modules/pkg/page.rst": ".. include:: /includes/foo.rst\n",
	})

	result, err := newSubstring(root).Classify([]string{"source/includes/foo.rst", "source/page.rst"})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"source/includes/foo.rst": {"source/code.txt", "source/page.rst"},
	}, result.Impacted)
	assert.Equal(t, []string{"source/page.rst"}, result.Direct)
}

func Test_Substring_MatchesLongerTargetText(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/page.txt":               ".. include:: /includes/foo.rst.inc\n",
		"source/nested.txt":             ".. literalinclude:: /includes/steps/foo.rst\n",
		"source/includes/foo.rst":       "shared\n",
		"source/includes/steps/foo.rst": "step\n",
	})

	result, err := newSubstring(root).Classify([]string{"source/includes/foo.rst", "source/includes/steps/foo.rst"})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"source/includes/foo.rst":       {"source/page.txt"},
		"source/includes/steps/foo.rst": {"source/nested.txt"},
	}, result.Impacted)
	assert.Empty(t, result.Direct)
}

func Test_Substring_OutsideIncludesIsDirect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/page.rst":       ".. include:: /shared/foo.rst\n",
		"source/shared/foo.rst": "shared\n",
	})

	result, err := newSubstring(root).Classify([]string{"source/shared/foo.rst"})
	require.NoError(t, err)

	assert.Empty(t, result.Impacted)
	assert.Equal(t, []string{"source/shared/foo.rst"}, result.Direct)
}

func Test_Substring_NoIncluders(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"source/includes/lonely.rst": "nobody includes me\n",
	})

	result, err := newSubstring(root).Classify([]string{"source/includes/lonely.rst"})
	require.NoError(t, err)

	assert.Empty(t, result.Impacted)
	assert.Equal(t, []string{"source/includes/lonely.rst"}, result.Direct)
}
