package orchestrator

import (
	"errors"
	"testing"
)

func TestAgentErrorsMessageStableOrder(t *testing.T) {
	err := &AgentErrors{Agents: map[string]error{
		"zeta":  errors.New("z boom"),
		"alpha": errors.New("a boom"),
		"mid":   errors.New("m boom"),
	}}

	want := "all agents failed (alpha: a boom; mid: m boom; zeta: z boom)"
	for i := 0; i < 10; i++ {
		if got := err.Error(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestAgentErrorsUnwraps(t *testing.T) {
	err := &AgentErrors{Agents: map[string]error{"a": errors.New("boom")}}
	if !errors.Is(err, ErrAllAgentsFailed) {
		t.Error("expected errors.Is to match ErrAllAgentsFailed")
	}
}
