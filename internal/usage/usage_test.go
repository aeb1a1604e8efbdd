package usage

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kvasey/chorus/internal/orchestrator"
)

func sampleRecord(agent string, err error) orchestrator.ExecutionRecord {
	return orchestrator.ExecutionRecord{
		RunID:     "run-1",
		AgentName: agent,
		Duration:  250 * time.Millisecond,
		TokensIn:  100,
		TokensOut: 40,
		ToolCalls: []string{"read", "grep"},
		Err:       err,
		Timestamp: time.Now(),
	}
}

func TestTrackerAggregates(t *testing.T) {
	tr := NewTracker()
	tr.RecordExecution(sampleRecord("docs", nil))
	tr.RecordExecution(sampleRecord("docs", errors.New("boom")))
	tr.RecordExecution(sampleRecord("table", nil))

	stats := tr.Stats()
	docs, ok := stats["docs"]
	if !ok {
		t.Fatal("expected stats for docs agent")
	}
	if docs.Executions != 2 {
		t.Errorf("docs executions = %d, want 2", docs.Executions)
	}
	if docs.Failures != 1 {
		t.Errorf("docs failures = %d, want 1", docs.Failures)
	}
	if docs.TokensIn != 200 || docs.TokensOut != 80 {
		t.Errorf("docs tokens = %d/%d, want 200/80", docs.TokensIn, docs.TokensOut)
	}
	if docs.ToolCalls != 4 {
		t.Errorf("docs tool calls = %d, want 4", docs.ToolCalls)
	}
	if tr.Total() != 3 {
		t.Errorf("total = %d, want 3", tr.Total())
	}
}

func TestTrackerConcurrentRecords(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordExecution(sampleRecord("docs", nil))
		}()
	}
	wg.Wait()

	if got := tr.Stats()["docs"].Executions; got != 20 {
		t.Errorf("executions = %d, want 20", got)
	}
}

func TestStoreRecordAndSummarize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	store.RecordExecution(sampleRecord("docs", nil))
	store.RecordExecution(sampleRecord("docs", errors.New("timeout")))
	store.RecordExecution(sampleRecord("table", nil))

	summaries, err := store.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	// Ordered by execution count, docs first.
	if summaries[0].AgentName != "docs" {
		t.Errorf("first summary = %s, want docs", summaries[0].AgentName)
	}
	if summaries[0].Executions != 2 || summaries[0].Failures != 1 {
		t.Errorf("docs summary = %d executions %d failures, want 2/1",
			summaries[0].Executions, summaries[0].Failures)
	}
	if summaries[0].TokensIn != 200 {
		t.Errorf("docs tokens in = %d, want 200", summaries[0].TokensIn)
	}
}

func TestStoreReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	store.RecordExecution(sampleRecord("docs", nil))
	store.Close()

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	summaries, err := reopened.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Executions != 1 {
		t.Fatalf("expected one persisted execution, got %+v", summaries)
	}
}
