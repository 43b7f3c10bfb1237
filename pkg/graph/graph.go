// Package graph implements the stateful traversal runtime that drives every
// request through a fixed pipeline of typed processing stages (nodes).
//
// It generalises the teacher's fixed sequential stage-chain executor
// (queue.RealSessionExecutor.Execute, which walks a chain config's ordered
// stage list) from "always the next stage" to "the first outgoing edge
// whose predicate matches", so the same runtime can express the router's
// branching policy (§4.6 of the specification) instead of a straight line.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// NodeFunc processes a State and returns the updated State. A node must
// leave the State such that exactly one of {final_output set, next_node
// set} holds — the runtime does not enforce this beyond what Build can
// check statically (outgoing edges exist), but report_result/fallback
// enforce it for the terminal leg.
type NodeFunc func(ctx context.Context, s state.State) (state.State, error)

// Predicate evaluates a State after a node returns, deciding whether the
// edge it's attached to should be taken. A nil Predicate is unconditional.
type Predicate func(s state.State) bool

// Edge is one outgoing transition from a node.
type Edge struct {
	To   string
	When Predicate
}

// ErrIterationBound is set on the State (key "error") and surfaces via the
// fallback terminal when a run exceeds MaxIterations.
var ErrIterationBound = errors.New("graph: iteration bound exceeded")

// DefaultMaxIterations bounds pathological cycles when the caller does not
// configure one explicitly.
const DefaultMaxIterations = 20

// Graph holds an immutable node registry and edge list. It is safe to share
// across concurrent requests: Run never mutates the Graph, only the State
// it is given for that single invocation.
type Graph struct {
	nodes         map[string]NodeFunc
	edges         map[string][]Edge
	entry         string
	terminals     map[string]bool
	maxIterations int
}

// Builder accumulates nodes/edges before Build validates and freezes them.
type Builder struct {
	g *Graph
}

// NewBuilder creates a Builder with the given entry node name.
func NewBuilder(entry string) *Builder {
	return &Builder{g: &Graph{
		nodes:         make(map[string]NodeFunc),
		edges:         make(map[string][]Edge),
		terminals:     make(map[string]bool),
		entry:         entry,
		maxIterations: DefaultMaxIterations,
	}}
}

// MaxIterations overrides the default bound.
func (b *Builder) MaxIterations(n int) *Builder {
	b.g.maxIterations = n
	return b
}

// AddNode registers a node function under name.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	b.g.nodes[name] = fn
	return b
}

// AddTerminal registers a node function under name and marks it terminal:
// once control reaches it, Run returns without consulting outgoing edges.
func (b *Builder) AddTerminal(name string, fn NodeFunc) *Builder {
	b.g.nodes[name] = fn
	b.g.terminals[name] = true
	return b
}

// AddEdge appends an outgoing edge from "from" to "to", guarded by when
// (nil = unconditional). Edges are matched in registration order — more
// specific predicates must be registered before a trailing unconditional
// edge from the same node.
func (b *Builder) AddEdge(from, to string, when Predicate) *Builder {
	b.g.edges[from] = append(b.g.edges[from], Edge{To: to, When: when})
	return b
}

// Build validates the graph (entry node exists, every edge target exists,
// only the last outgoing edge from any node may be unconditional) and
// returns the frozen Graph.
func (b *Builder) Build() (*Graph, error) {
	g := b.g
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("graph: entry node %q is not registered", g.entry)
	}
	if len(g.terminals) == 0 {
		return nil, errors.New("graph: at least one terminal node is required")
	}
	for from, edges := range g.edges {
		for i, e := range edges {
			if _, ok := g.nodes[e.To]; !ok {
				return nil, fmt.Errorf("graph: edge %s -> %s targets an unregistered node", from, e.To)
			}
			if e.When == nil && i != len(edges)-1 {
				return nil, fmt.Errorf("graph: unconditional edge from %q must be last (found at position %d of %d)", from, i, len(edges))
			}
		}
	}
	return g, nil
}

// Run copies input into a fresh State, sets the current node to the entry,
// and repeatedly invokes nodes, following the first matching outgoing edge,
// until a terminal node is reached or MaxIterations is exhausted. A node
// that panics or returns an error never propagates out of Run: it is
// recorded on the State ("error", "message") and control transfers to the
// "fallback" terminal, which always produces a well-formed final_output.
func (g *Graph) Run(ctx context.Context, input state.State) state.State {
	current := input.Snapshot()
	node := g.entry

	for i := 0; i < g.maxIterations; i++ {
		next, err := g.invoke(ctx, node, current)
		if err != nil {
			return g.crash(ctx, current, err)
		}
		current = next

		if g.terminals[node] {
			return current
		}

		nextNode, ok := g.selectEdge(node, current)
		if !ok {
			return g.crash(ctx, current, fmt.Errorf("graph: node %q produced no matching outgoing edge and is not terminal", node))
		}
		node = nextNode
	}

	return g.crash(ctx, current, ErrIterationBound)
}

// invoke calls the named node function, converting a panic into an error so
// a single misbehaving node can never crash the caller's goroutine.
func (g *Graph) invoke(ctx context.Context, name string, s state.State) (out state.State, err error) {
	fn, ok := g.nodes[name]
	if !ok {
		return s, fmt.Errorf("graph: node %q is not registered", name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("graph: node %q panicked: %v", name, r)
		}
	}()
	return fn(ctx, s)
}

func (g *Graph) selectEdge(from string, s state.State) (string, bool) {
	for _, e := range g.edges[from] {
		if e.When == nil || e.When(s) {
			return e.To, true
		}
	}
	return "", false
}

// crash records the failure on the State and routes through "fallback",
// which — per contract — is required to always return a State carrying a
// non-nil final_output.
func (g *Graph) crash(ctx context.Context, s state.State, cause error) state.State {
	slog.Error("graph: node failed, routing to fallback", "error", cause)
	s = s.Snapshot()
	s["error"] = "internal_error"
	s["message"] = cause.Error()

	fn, ok := g.nodes["fallback"]
	if !ok {
		// No fallback registered: synthesise a minimal well-formed output so
		// Run's crash-barrier guarantee still holds.
		s["final_output"] = map[string]any{
			"action":  s["action"],
			"status":  "failed",
			"message": cause.Error(),
		}
		return s
	}

	out, err := fn(ctx, s)
	if err != nil {
		// fallback itself must never fail; if it does, synthesise directly.
		out = s
		out["final_output"] = map[string]any{
			"status":  "failed",
			"message": cause.Error(),
		}
	}
	return out
}
