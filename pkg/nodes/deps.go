// Package nodes implements the node functions that make up the graph
// runtime's fixed pipeline (C4-C10, C12 of the specification): intent
// parsing, target resolution, routing, consequence analysis, the
// confirmation gate, the wizard engine wrapper, the action executor, and
// the suggestion/selection providers, plus the two terminal nodes.
//
// Each node is a method on Deps with the graph.NodeFunc signature
// (func(ctx, state.State) (state.State, error)); pkg/nodes/graph.go wires
// them into a graph.Graph with the router's edge policy. Grounded on the
// teacher's queue stage functions (pkg/queue/stages/*.go — each stage a
// free function closing over its collaborators) generalised to methods on
// a shared Deps so every node can reach the same Tooling/LLM/session
// collaborators without a global.
package nodes

import (
	"context"

	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/session"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// LLMParser is the narrow interface nodes depend on instead of the
// concrete *llmclient.Client, so tests can substitute a stub (interface
// at point of use, per the teacher's convention).
type LLMParser interface {
	Parse(ctx context.Context, text string, reqCtx llmclient.Context) llmclient.Intent
}

// SessionCreator is the narrow slice of session.Store the confirmation
// gate (C8) needs: inserting a new pending action and getting back its id.
type SessionCreator interface {
	Create(ctx context.Context, userID string, pendingAction map[string]any) (*session.Session, error)
}

// Deps bundles every collaborator a node may call. Constructed once at
// startup and shared read-only across all concurrent requests, mirroring
// the Graph's own immutable-after-construction contract (§4.1).
type Deps struct {
	Tools    tools.Tooling
	LLM      LLMParser
	Sessions SessionCreator
}
