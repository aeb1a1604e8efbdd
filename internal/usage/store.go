package usage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kvasey/chorus/internal/orchestrator"
)

// executionsSchema is applied on open. One row per agent execution.
const executionsSchema = `
CREATE TABLE IF NOT EXISTS executions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	agent_name  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	tokens_in   INTEGER NOT NULL DEFAULT 0,
	tokens_out  INTEGER NOT NULL DEFAULT 0,
	tool_calls  TEXT NOT NULL DEFAULT '',
	error       TEXT,
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_agent ON executions(agent_name);
CREATE INDEX IF NOT EXISTS idx_executions_run ON executions(run_id);
`

// Store is a sqlite-backed sink persisting one row per agent execution.
// Writes are serialized internally; reads use the same connection.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// OpenStore opens (creating if needed) the usage database at path.
// WAL mode is enabled for concurrent reads.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create usage directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open usage database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec(executionsSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply usage schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// RecordExecution implements orchestrator.Sink.
// Persistence failures are swallowed: the sink is advisory and must
// never fail an orchestration run.
func (s *Store) RecordExecution(rec orchestrator.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText sql.NullString
	if rec.Err != nil {
		errText = sql.NullString{String: rec.Err.Error(), Valid: true}
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	s.conn.Exec(
		`INSERT INTO executions (run_id, agent_name, duration_ms, tokens_in, tokens_out, tool_calls, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.AgentName, rec.Duration.Milliseconds(),
		rec.TokensIn, rec.TokensOut, strings.Join(rec.ToolCalls, ","),
		errText, ts,
	)
}

// Summary holds persisted totals for one agent.
type Summary struct {
	// AgentName is the agent the row describes.
	AgentName string
	// Executions is the number of persisted executions.
	Executions int
	// Failures is how many had an error.
	Failures int
	// TotalDurationMs is the summed execution time in milliseconds.
	TotalDurationMs int64
	// TokensIn / TokensOut are summed token counts.
	TokensIn  int64
	TokensOut int64
}

// Summarize returns per-agent totals ordered by execution count.
func (s *Store) Summarize() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(`
		SELECT agent_name,
		       COUNT(*),
		       SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END),
		       SUM(duration_ms),
		       SUM(tokens_in),
		       SUM(tokens_out)
		FROM executions
		GROUP BY agent_name
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.AgentName, &sum.Executions, &sum.Failures,
			&sum.TotalDurationMs, &sum.TokensIn, &sum.TokensOut); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Verify Store implements the sink interface at compile time.
var _ orchestrator.Sink = (*Store)(nil)
