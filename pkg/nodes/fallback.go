package nodes

import (
	"context"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// Fallback is the "fallback" terminal the graph runtime's crash barrier
// routes to whenever a node panics, errors, or the iteration bound is
// exceeded (§4.1). It must always return a well-formed final_output —
// this is the guarantee that lets Run() never propagate a partial state
// to the caller.
func (d *Deps) Fallback(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()

	errKind := out.GetString("error")
	if errKind == "" {
		errKind = "internal_error"
	}
	message := out.GetString("message")
	if message == "" {
		message = "Something went wrong processing your request. Please try again."
	}

	out["final_output"] = map[string]any{
		"action":             out.GetString("action"),
		"status":             "failed",
		"error":              errKind,
		"message":            message,
		"needs_confirmation": false,
	}
	return out, nil
}
