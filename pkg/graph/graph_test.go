package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

func terminalFinal(status string) NodeFunc {
	return func(_ context.Context, s state.State) (state.State, error) {
		s.Set("final_output", map[string]any{"status": status, "message": s.GetString("message")})
		return s, nil
	}
}

func TestGraph_SimpleLinearRun(t *testing.T) {
	b := NewBuilder("a")
	b.AddNode("a", func(_ context.Context, s state.State) (state.State, error) {
		s.Set("visited_a", true)
		return s, nil
	})
	b.AddTerminal("b", terminalFinal("executed"))
	b.AddEdge("a", "b", nil)

	g, err := b.Build()
	require.NoError(t, err)

	out := g.Run(context.Background(), state.New())
	assert.True(t, out.GetBool("visited_a"))
	fo := out["final_output"].(map[string]any)
	assert.Equal(t, "executed", fo["status"])
}

func TestGraph_PredicateOrdering_FirstMatchWins(t *testing.T) {
	b := NewBuilder("route")
	b.AddNode("route", func(_ context.Context, s state.State) (state.State, error) { return s, nil })
	b.AddTerminal("risky", terminalFinal("risky"))
	b.AddTerminal("safe", terminalFinal("safe"))
	b.AddTerminal("other", terminalFinal("other"))

	b.AddEdge("route", "risky", func(s state.State) bool { return s.GetString("action") == "cancel_trip" })
	b.AddEdge("route", "safe", func(s state.State) bool { return s.GetString("action") == "list_all_stops" })
	b.AddEdge("route", "other", nil)

	g, err := b.Build()
	require.NoError(t, err)

	out := g.Run(context.Background(), state.State{"action": "cancel_trip"})
	assert.Equal(t, "risky", out["final_output"].(map[string]any)["status"])

	out = g.Run(context.Background(), state.State{"action": "list_all_stops"})
	assert.Equal(t, "safe", out["final_output"].(map[string]any)["status"])

	out = g.Run(context.Background(), state.State{"action": "unknown"})
	assert.Equal(t, "other", out["final_output"].(map[string]any)["status"])
}

func TestGraph_BuildRejectsUnconditionalEdgeNotLast(t *testing.T) {
	b := NewBuilder("a")
	b.AddNode("a", func(_ context.Context, s state.State) (state.State, error) { return s, nil })
	b.AddTerminal("b", terminalFinal("x"))
	b.AddTerminal("c", terminalFinal("y"))
	b.AddEdge("a", "b", nil) // unconditional, but not last
	b.AddEdge("a", "c", func(s state.State) bool { return true })

	_, err := b.Build()
	assert.Error(t, err)
}

func TestGraph_BuildRejectsUnknownEdgeTarget(t *testing.T) {
	b := NewBuilder("a")
	b.AddTerminal("a", terminalFinal("x"))
	b.AddEdge("a", "ghost", nil)
	_, err := b.Build()
	assert.Error(t, err)
}

func TestGraph_CrashBarrier_NodeError(t *testing.T) {
	b := NewBuilder("boom")
	b.AddNode("boom", func(_ context.Context, s state.State) (state.State, error) {
		return s, errors.New("database exploded")
	})
	b.AddTerminal("fallback", func(_ context.Context, s state.State) (state.State, error) {
		s.Set("final_output", map[string]any{
			"status":  "failed",
			"message": s.GetString("message"),
		})
		return s, nil
	})

	g, err := b.Build()
	require.NoError(t, err)

	out := g.Run(context.Background(), state.New())
	require.Contains(t, out, "final_output")
	fo := out["final_output"].(map[string]any)
	assert.Equal(t, "failed", fo["status"])
	assert.Contains(t, out.GetString("message"), "database exploded")
}

func TestGraph_CrashBarrier_Panic(t *testing.T) {
	b := NewBuilder("boom")
	b.AddNode("boom", func(_ context.Context, s state.State) (state.State, error) {
		panic("unexpected nil pointer")
	})
	b.AddTerminal("fallback", func(_ context.Context, s state.State) (state.State, error) {
		s.Set("final_output", map[string]any{"status": "failed", "message": s.GetString("message")})
		return s, nil
	})
	g, err := b.Build()
	require.NoError(t, err)

	out := g.Run(context.Background(), state.New())
	require.NotNil(t, out["final_output"])
}

func TestGraph_IterationBound(t *testing.T) {
	b := NewBuilder("loop")
	b.MaxIterations(5)
	b.AddNode("loop", func(_ context.Context, s state.State) (state.State, error) { return s, nil })
	b.AddTerminal("fallback", func(_ context.Context, s state.State) (state.State, error) {
		s.Set("final_output", map[string]any{"status": "failed", "message": s.GetString("message")})
		return s, nil
	})
	b.AddEdge("loop", "loop", nil)

	g, err := b.Build()
	require.NoError(t, err)

	out := g.Run(context.Background(), state.New())
	require.NotNil(t, out["final_output"])
	assert.Contains(t, out.GetString("message"), "iteration bound")
}

func TestGraph_StateIsolation_ConcurrentRuns(t *testing.T) {
	b := NewBuilder("a")
	b.AddNode("a", func(_ context.Context, s state.State) (state.State, error) {
		s.Set("mutated", s.GetString("id"))
		return s, nil
	})
	b.AddTerminal("b", terminalFinal("ok"))
	b.AddEdge("a", "b", nil)
	g, err := b.Build()
	require.NoError(t, err)

	done := make(chan state.State, 2)
	go func() { done <- g.Run(context.Background(), state.State{"id": "first"}) }()
	go func() { done <- g.Run(context.Background(), state.State{"id": "second"}) }()

	r1 := <-done
	r2 := <-done
	ids := map[string]bool{r1.GetString("mutated"): true, r2.GetString("mutated"): true}
	assert.True(t, ids["first"])
	assert.True(t, ids["second"])
}

func TestGraph_NoFallbackRegistered_SynthesisesOutput(t *testing.T) {
	b := NewBuilder("boom")
	b.AddTerminal("boom", func(_ context.Context, s state.State) (state.State, error) {
		return s, errors.New("no fallback here")
	})
	g, err := b.Build()
	require.NoError(t, err)
	out := g.Run(context.Background(), state.New())
	require.NotNil(t, out["final_output"])
}
