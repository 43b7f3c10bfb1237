// Package llmclient parses free-form operator text into a structured
// Intent: a primary LLM provider with a secondary fallback and, below
// both, a deterministic regex parser, so the core never blocks on an
// external dependency for the common surface of commands (§4.3).
//
// Grounded on the teacher's pkg/llm/client.go (Client wraps a provider
// connection, configured from the environment) but reimplemented over
// HTTP via github.com/sashabaranov/go-openai instead of the teacher's
// generated gRPC/protobuf stubs, which are not available in this module
// (see DESIGN.md).
package llmclient

import "context"

// Intent is the structured result of parsing operator text (§4.3).
type Intent struct {
	Action         string         `json:"action"`
	TargetLabel    *string        `json:"target_label"`
	TargetEntityID *int64         `json:"target_entity_id"`
	TargetTime     *string        `json:"target_time"`
	Parameters     map[string]any `json:"parameters"`
	Confidence     float64        `json:"confidence"`
	Clarify        bool           `json:"clarify"`
	ClarifyOptions []string       `json:"clarify_options"`
	Explanation    string         `json:"explanation"`
}

// Context carries the compact request context the parser conditions on.
type Context struct {
	SelectedEntityID *int64
	CurrentPage      string
	RecentHistory    []string
}

// Provider is a single LLM backend capable of turning a prompt into raw
// text. Both the primary and secondary providers implement this.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// unknownIntent is the zero-confidence fallback returned whenever no
// stage of the pipeline can confidently classify the text.
func unknownIntent() Intent {
	return Intent{Action: "unknown", Confidence: 0, Parameters: map[string]any{}}
}
