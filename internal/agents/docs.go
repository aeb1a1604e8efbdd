// Package agents contains the built-in reference agents shipped with
// chorus. Each one implements agent.Agent and is registered by the CLI
// with a fixed priority; custom agents can replace or extend them.
package agents

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kvasey/chorus/internal/agent"
)

const docsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_title ON documents(title);
`

// docsKeywords are query terms that suggest a knowledge lookup.
var docsKeywords = []string{
	"doc", "docs", "documentation", "guide", "how do i", "how to",
	"what is", "explain", "reference", "manual",
}

// DocsAgent answers queries by searching a local sqlite document store.
// It is a knowledge-retrieval agent: it never calls the oracle.
type DocsAgent struct {
	db *sql.DB
}

// NewDocsAgent opens (creating if needed) the document store at path.
func NewDocsAgent(path string) (*DocsAgent, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create docs directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open docs store: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(docsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply docs schema: %w", err)
	}
	return &DocsAgent{db: db}, nil
}

// Name implements agent.Agent.
func (a *DocsAgent) Name() string { return "docs" }

// Description implements agent.Agent.
func (a *DocsAgent) Description() string {
	return "Searches the local documentation store and returns matching documents. Best for how-to, reference, and explanation queries."
}

// CanHandle reports true when the query looks like a knowledge lookup.
func (a *DocsAgent) CanHandle(ctx context.Context, query string, reqContext map[string]any) bool {
	q := strings.ToLower(query)
	for _, kw := range docsKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Execute searches titles and bodies for the query terms and returns
// the best matches, title first.
func (a *DocsAgent) Execute(ctx context.Context, query string, reqContext map[string]any) (string, []string, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := a.db.QueryContext(ctx,
		`SELECT title, body FROM documents
		 WHERE title LIKE ? OR body LIKE ?
		 ORDER BY CASE WHEN title LIKE ? THEN 0 ELSE 1 END
		 LIMIT 5`,
		pattern, pattern, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	n := 0
	for rows.Next() {
		var title, body string
		if err := rows.Scan(&title, &body); err != nil {
			return "", nil, fmt.Errorf("scan document: %w", err)
		}
		if n > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "# %s\n%s", title, body)
		n++
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("search documents: %w", err)
	}
	if n == 0 {
		return "No matching documents found.", []string{"docs.search"}, nil
	}
	return b.String(), []string{"docs.search"}, nil
}

// AddDocument inserts a document. Used by seeding and tests.
func (a *DocsAgent) AddDocument(ctx context.Context, title, body string) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT INTO documents (title, body) VALUES (?, ?)", title, body)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (a *DocsAgent) Close() error { return a.db.Close() }

// Verify DocsAgent implements the capability interface at compile time.
var _ agent.Agent = (*DocsAgent)(nil)
