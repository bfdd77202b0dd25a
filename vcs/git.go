// Package vcs lists the files that differ between two revisions of the
// documentation repository.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// Source yields the changed files for one run, relative to the repository root
// with forward slashes.
type Source interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// GitClient runs git in a working directory.
//
// GitClient is safe for concurrent use.
type GitClient struct {
	workDir string
}

// NewGitClient creates a GitClient for the given working directory.
func NewGitClient(workDir string) *GitClient {
	return &GitClient{workDir: workDir}
}

// IsGitRepo reports whether the working directory is inside a git repository.
func (g *GitClient) IsGitRepo(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = g.workDir
	return cmd.Run() == nil
}

// DiffFiles returns the files that differ between base and head, in diff order
// without duplicates. Deleted files are reported under their old name, and
// mode-only changes are included.
func (g *GitClient) DiffFiles(ctx context.Context, base, head string) ([]string, error) {
	if err := validateRef(base); err != nil {
		return nil, fmt.Errorf("base ref: %w", err)
	}
	if err := validateRef(head); err != nil {
		return nil, fmt.Errorf("head ref: %w", err)
	}

	args := []string{
		"-c", "core.quotePath=false",
		"diff", "--name-only", "-z", "--no-ext-diff", "--no-renames",
		base, head, "--",
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git diff %s %s: %w: %s", base, head, err, strings.TrimSpace(stderr.String()))
	}

	return parseNameList(stdout.Bytes()), nil
}

// parseNameList splits NUL-terminated path output, dropping duplicates.
func parseNameList(out []byte) []string {
	files := make([]string, 0)
	seen := make(map[string]struct{})
	for _, name := range strings.Split(string(out), "\x00") {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, name)
	}
	return files
}

// ParsePatch extracts the changed file paths from a unified multi-file diff as
// produced by git diff. Hunkless entries such as mode-only changes carry no file
// names in the patch and are skipped.
func ParsePatch(r io.Reader) ([]string, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(r).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	seen := make(map[string]struct{}, len(fileDiffs))
	files := make([]string, 0, len(fileDiffs))
	for _, fileDiff := range fileDiffs {
		name := fileDiff.NewName
		if name == "" || name == devNull {
			name = fileDiff.OrigName
		}
		name = stripPrefix(name)
		if name == "" || name == devNull {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, name)
	}
	return files, nil
}

// stripPrefix removes git's a/ and b/ source and destination prefixes.
func stripPrefix(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

func validateRef(ref string) error {
	switch {
	case strings.TrimSpace(ref) == "":
		return fmt.Errorf("empty revision")
	case strings.HasPrefix(ref, "-"):
		return fmt.Errorf("revision %q must not start with '-'", ref)
	}
	return nil
}

// RefRange is a Source that diffs two revisions with git.
type RefRange struct {
	Client *GitClient
	Base   string
	Head   string
}

// ChangedFiles implements Source.
func (r RefRange) ChangedFiles(ctx context.Context) ([]string, error) {
	if !r.Client.IsGitRepo(ctx) {
		return nil, fmt.Errorf("%s is not inside a git work tree", r.Client.workDir)
	}
	return r.Client.DiffFiles(ctx, r.Base, r.Head)
}

// PatchFile is a Source reading a unified diff from a file, or from standard
// input when the path is "-".
type PatchFile string

// ChangedFiles implements Source.
func (p PatchFile) ChangedFiles(ctx context.Context) ([]string, error) {
	if p == "-" {
		return ParsePatch(os.Stdin)
	}
	f, err := os.Open(string(p))
	if err != nil {
		return nil, fmt.Errorf("opening patch: %w", err)
	}
	defer f.Close()
	return ParsePatch(f)
}

// StaticSource is a Source over a list the host pipeline already computed.
type StaticSource []string

// ChangedFiles implements Source. Blank entries are dropped.
func (s StaticSource) ChangedFiles(ctx context.Context) ([]string, error) {
	files := make([]string, 0, len(s))
	for _, file := range s {
		file = strings.TrimSpace(file)
		if file != "" {
			files = append(files, strings.TrimPrefix(file, "./"))
		}
	}
	return files, nil
}
