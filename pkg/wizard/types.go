// Package wizard implements the declarative multi-step creation flows
// C9 drives (§4.9): each wizard type is a fixed, ordered sequence of
// typed steps, persisted into a State's wizard_* keys between requests by
// the session store (pkg/session) and the graph node that owns them
// (pkg/nodes/wizard.go).
//
// Grounded on the teacher's registry idiom — a package-level
// map[string]*Definition assembled at init, the same "registry, not
// branch tree" shape as pkg/agent/factory.go's ControllerFactory map —
// rather than any single teacher wizard (the teacher has no multi-turn
// guided-creation flow of its own).
package wizard

import (
	"context"

	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// OptionRecord is one selectable choice offered alongside a step's
// question (e.g. one row per available vehicle).
type OptionRecord struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Step is one question in a wizard's fixed sequence.
type Step struct {
	// Field is the wizard_data key this step populates.
	Field string
	// Question is shown verbatim to the user.
	Question string
	// Hint is additional guidance shown alongside the question.
	Hint string
	// Validate parses and validates the raw answer against data collected
	// so far, returning the typed value to store under Field.
	Validate func(raw string, data map[string]any) (any, error)
	// Options lists selectable choices for this step, or nil for a
	// free-text step.
	Options func(ctx context.Context, t tools.Tooling, data map[string]any) ([]OptionRecord, error)
}

// Definition is one wizard type: its ordered steps and the tool-layer
// call that executes once every step has been answered.
type Definition struct {
	Type  string
	Steps []Step
	// Complete runs the creation mutation once all steps are answered,
	// returning the result to report back to the user.
	Complete func(ctx context.Context, t tools.Tooling, data map[string]any, userID string) (map[string]any, error)
}

// Registry is the closed set of wizard types C9 may dispatch to.
var Registry = map[string]*Definition{}

func register(d *Definition) {
	Registry[d.Type] = d
}

// Lookup returns the named wizard definition, or nil if unknown.
func Lookup(wizardType string) *Definition {
	return Registry[wizardType]
}

// CancelKeywords are the inputs that abort a wizard in progress (§4.9:
// "Cancellation mode (input matches a cancellation keyword, e.g.
// 'cancel')").
var CancelKeywords = map[string]bool{
	"cancel": true,
	"stop":   true,
	"quit":   true,
	"abort":  true,
}

// IsCancellation reports whether raw (already lower-cased by the caller's
// trim/normalise step) requests wizard cancellation.
func IsCancellation(raw string) bool {
	return CancelKeywords[raw]
}
