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

const tableSchema = `
CREATE TABLE IF NOT EXISTS records (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	series TEXT NOT NULL,
	value  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_series ON records(series);
`

// tableKeywords are query terms that suggest a computation over data.
var tableKeywords = []string{
	"count", "sum", "average", "avg", "total", "mean", "min", "max",
	"how many", "statistics", "stats",
}

// TableAgent computes aggregates over a local sqlite record store.
// It is a data-analysis agent: answers are numeric, never generative.
type TableAgent struct {
	db *sql.DB
}

// NewTableAgent opens (creating if needed) the record store at path.
func NewTableAgent(path string) (*TableAgent, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create table directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(tableSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply record schema: %w", err)
	}
	return &TableAgent{db: db}, nil
}

// Name implements agent.Agent.
func (a *TableAgent) Name() string { return "table" }

// Description implements agent.Agent.
func (a *TableAgent) Description() string {
	return "Computes counts, sums, and averages over the local record store. Best for numeric and statistical queries."
}

// CanHandle reports true when the query asks for an aggregate.
func (a *TableAgent) CanHandle(ctx context.Context, query string, reqContext map[string]any) bool {
	q := strings.ToLower(query)
	for _, kw := range tableKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Execute picks an aggregate function from the query wording, scoped to
// a series when one is named, and returns the computed value.
func (a *TableAgent) Execute(ctx context.Context, query string, reqContext map[string]any) (string, []string, error) {
	fn := aggregateFor(query)
	series := a.matchSeries(ctx, query)

	var (
		value sql.NullFloat64
		err   error
	)
	if series != "" {
		err = a.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s(value) FROM records WHERE series = ?", fn),
			series).Scan(&value)
	} else {
		err = a.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s(value) FROM records", fn)).Scan(&value)
	}
	if err != nil {
		return "", nil, fmt.Errorf("aggregate records: %w", err)
	}
	if !value.Valid {
		return "No records found.", []string{"table.query"}, nil
	}

	scope := "all records"
	if series != "" {
		scope = fmt.Sprintf("series %q", series)
	}
	return fmt.Sprintf("%s over %s: %g", strings.ToLower(fn), scope, value.Float64),
		[]string{"table.query"}, nil
}

// aggregateFor maps query wording to a SQL aggregate. COUNT is the
// default because "how many" questions dominate.
func aggregateFor(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "sum") || strings.Contains(q, "total"):
		return "SUM"
	case strings.Contains(q, "average") || strings.Contains(q, "avg") || strings.Contains(q, "mean"):
		return "AVG"
	case strings.Contains(q, "min"):
		return "MIN"
	case strings.Contains(q, "max"):
		return "MAX"
	default:
		return "COUNT"
	}
}

// matchSeries returns the first known series name mentioned in the
// query, or empty when none match.
func (a *TableAgent) matchSeries(ctx context.Context, query string) string {
	rows, err := a.db.QueryContext(ctx, "SELECT DISTINCT series FROM records")
	if err != nil {
		return ""
	}
	defer rows.Close()

	q := strings.ToLower(query)
	for rows.Next() {
		var series string
		if rows.Scan(&series) != nil {
			continue
		}
		if strings.Contains(q, strings.ToLower(series)) {
			return series
		}
	}
	return ""
}

// AddRecord inserts a data point. Used by seeding and tests.
func (a *TableAgent) AddRecord(ctx context.Context, series string, value float64) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT INTO records (series, value) VALUES (?, ?)", series, value)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (a *TableAgent) Close() error { return a.db.Close() }

// Verify TableAgent implements the capability interface at compile time.
var _ agent.Agent = (*TableAgent)(nil)
