package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kvasey/chorus/internal/agent"
)

// maxFileBytes caps how much of a file the agent returns.
const maxFileBytes = 64 * 1024

// filesKeywords are query terms that suggest a file operation.
var filesKeywords = []string{
	"file", "files", "read", "show", "list", "contents", "directory",
}

// FilesAgent reads and lists files under a fixed workspace root.
// Paths are resolved inside the root; traversal outside it is refused.
type FilesAgent struct {
	root string
}

// NewFilesAgent creates a FilesAgent rooted at dir.
func NewFilesAgent(dir string) (*FilesAgent, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &FilesAgent{root: abs}, nil
}

// Name implements agent.Agent.
func (a *FilesAgent) Name() string { return "files" }

// Description implements agent.Agent.
func (a *FilesAgent) Description() string {
	return "Lists workspace files and returns file contents. Best for queries that name a file or ask what the workspace contains."
}

// CanHandle reports true when the query looks like a file operation.
func (a *FilesAgent) CanHandle(ctx context.Context, query string, reqContext map[string]any) bool {
	q := strings.ToLower(query)
	for _, kw := range filesKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Execute reads the file named in the query, or lists the workspace
// when the query names none.
func (a *FilesAgent) Execute(ctx context.Context, query string, reqContext map[string]any) (string, []string, error) {
	if name := a.namedFile(query); name != "" {
		return a.read(name)
	}
	return a.list()
}

// namedFile returns the first workspace file whose name appears in the
// query, or empty when none do.
func (a *FilesAgent) namedFile(query string) string {
	q := strings.ToLower(query)
	entries, err := os.ReadDir(a.root)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(q, strings.ToLower(e.Name())) {
			return e.Name()
		}
	}
	return ""
}

func (a *FilesAgent) read(name string) (string, []string, error) {
	path := filepath.Join(a.root, name)
	// Join cleans the path; reject anything that escaped the root.
	if !strings.HasPrefix(path, a.root+string(filepath.Separator)) {
		return "", nil, fmt.Errorf("path %s is outside the workspace", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxFileBytes {
		data = append(data[:maxFileBytes], []byte("\n[file truncated]")...)
	}
	return string(data), []string{"files.read"}, nil
}

func (a *FilesAgent) list() (string, []string, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		return "", nil, fmt.Errorf("list workspace: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "The workspace is empty.", []string{"files.list"}, nil
	}
	return strings.Join(names, "\n"), []string{"files.list"}, nil
}

// Verify FilesAgent implements the capability interface at compile time.
var _ agent.Agent = (*FilesAgent)(nil)
