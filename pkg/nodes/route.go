package nodes

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/state"
	"github.com/tarsy-transit/opsagent/pkg/wizard"
)

// pageForAction is the closed page-context restriction (§4.6 step 1):
// actions not listed here are permitted from any page. Two closed sets
// per the spec — "trip-operations" and "configuration" — collapsed into
// one lookup of required page per action.
var pageForAction = map[string]string{
	"get_trip_status":      "trip_ops",
	"get_bookings":         "trip_ops",
	"assign_vehicle":       "trip_ops",
	"assign_driver":        "trip_ops",
	"add_vehicle":          "trip_ops",
	"add_driver":           "trip_ops",
	"remove_vehicle":       "trip_ops",
	"cancel_trip":          "trip_ops",
	"update_trip_time":     "trip_ops",
	"get_unassigned_trips": "trip_ops",
	"create_stop":          "config",
	"create_path":          "config",
	"create_route":         "config",
}

// selectionRequirement names the entity kind a selection provider must
// fill in before an action can execute, keyed by the parsed_params field
// that, if missing, triggers the selection step.
var selectionRequirement = map[string]struct {
	paramKey string
	kind     string
}{
	"assign_vehicle": {paramKey: "vehicle_id", kind: "vehicle"},
	"assign_driver":  {paramKey: "driver_id", kind: "driver"},
}

// Route is the decision router node (C6): the single point where policy
// is enforced, choosing next_node by checking, in order, page context,
// wizard state, creation-wizard entry, OCR outcome, ambiguity, selection
// requirements, and safe/risky classification.
func (d *Deps) Route(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	action := out.GetString("action")
	currentPage := out.GetString("current_page")

	// 1. Page-context validation: defence-in-depth against a UI that
	// fails to hide a button.
	if required, ok := pageForAction[action]; ok && required != currentPage {
		out["error"] = "page_context_mismatch"
		out["message"] = fmt.Sprintf("%q cannot be performed from the %q page; switch to %q.", action, currentPage, required)
		out["next_node"] = "report_result"
		return out, nil
	}

	// 2. Wizard already active (mid-flow continuation).
	if out.GetBool("wizard_active") {
		out["next_node"] = "wizard_engine"
		return out, nil
	}

	// 3. Creation-wizard entry: the action itself names a registered
	// wizard type.
	if wizard.Lookup(action) != nil {
		out["next_node"] = "wizard_engine"
		return out, nil
	}

	resolveResult := out.GetString("resolve_result")
	fromImage := out.GetBool("from_image")

	// 4. OCR with a match: surface contextual next actions.
	if fromImage && resolveResult == "found" {
		out["next_node"] = "suggestion_provider"
		return out, nil
	}

	// 5. OCR without a match: offer creation instead of a dead end.
	if fromImage && resolveResult == "none" {
		out["next_node"] = "offer_creation"
		return out, nil
	}

	// Target genuinely required but not resolved outside the OCR path:
	// surface target_not_found rather than letting the executor run on
	// a missing trip_id (supplements the spec's explicit OCR-without-match
	// handling to the text-command case).
	if resolveResult == "none" {
		out["error"] = "target_not_found"
		out["message"] = "No matching trip was found for that request."
		out["next_node"] = "report_result"
		return out, nil
	}

	// 6. Ambiguity: ask the user to disambiguate.
	if resolveResult == "multiple" {
		out["needs_clarification"] = true
		if out.GetString("message") == "" {
			out["message"] = "Multiple trips match; please specify which one."
		}
		out["next_node"] = "report_result"
		return out, nil
	}

	// 7. Selection required: a vehicle/driver id is missing.
	if req, ok := selectionRequirement[action]; ok {
		if _, hasParam := paramInt64(paramsOf(out), req.paramKey); !hasParam {
			out["selection_kind"] = req.kind
			out["next_node"] = "selection_provider"
			return out, nil
		}
	}

	// 8. Safe actions execute directly.
	if llmclient.IsSafeAction(action) {
		out["next_node"] = "executor"
		return out, nil
	}

	// 9. Everything else is risky: analyse consequences first.
	out["next_node"] = "consequence_analyser"
	return out, nil
}
