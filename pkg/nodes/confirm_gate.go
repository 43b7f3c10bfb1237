package nodes

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// ConfirmGate is the confirmation gate node (C8). It builds a
// pending_action snapshot (action, every verified id the executor will
// consume, computed consequences, and — if applicable — the full wizard
// state), inserts it into the session store, and copies the generated
// session_id onto State.
//
// The snapshot passes through session.Store.Create, which runs it through
// state.Normalize before the insert — the recursive normaliser the spec
// calls mandatory (§4.8): skipping it is the exact failure mode that
// leaves session_id null.
func (d *Deps) ConfirmGate(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	userID := out.GetString("user_id")

	pending := map[string]any{
		"action":        out.GetString("action"),
		"parsed_params": paramsOf(out),
		"consequences":  out["consequences"],
	}
	if tripID, ok := out.GetInt64("trip_id"); ok {
		pending["trip_id"] = tripID
	}
	if pathID, ok := out.GetInt64("path_id"); ok {
		pending["path_id"] = pathID
	}
	if routeID, ok := out.GetInt64("route_id"); ok {
		pending["route_id"] = routeID
	}
	if out.GetBool("wizard_active") {
		pending["wizard_type"] = out.GetString("wizard_type")
		pending["wizard_step"], _ = out.GetInt64("wizard_step")
		pending["wizard_data"] = out["wizard_data"]
		pending["wizard_steps_total"] = out["wizard_steps_total"]
	}

	sess, err := d.Sessions.Create(ctx, userID, pending)
	if err != nil {
		return out, fmt.Errorf("confirm gate: create session: %w", err)
	}

	out["session_id"] = sess.SessionID.String()
	out["status"] = "awaiting_confirmation"
	out["confirmation_required"] = true
	out["pending_action"] = pending
	out["next_node"] = "report_result"
	return out, nil
}
