package nodes

import (
	"context"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// ReportResult is the "report_result" terminal. It assembles
// final_output from whatever the preceding node left on State — every
// field is optional on State but the shape of final_output is fixed
// (§3.1): action, trip_id?, status, message, needs_confirmation,
// session_id?, suggestions?, options?, type?, data?.
func (d *Deps) ReportResult(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()

	status := out.GetString("status")
	if status == "" {
		switch {
		case out.GetBool("confirmation_required"):
			status = "awaiting_confirmation"
		case out.GetString("error") != "":
			status = "failed"
		default:
			status = "ok"
		}
	}

	message := out.GetString("message")
	if message == "" {
		message = defaultMessage(out, status)
	}

	final := map[string]any{
		"action":             out.GetString("action"),
		"status":             status,
		"message":            message,
		"needs_confirmation": out.GetBool("confirmation_required"),
	}
	if tripID, ok := out.GetInt64("trip_id"); ok {
		final["trip_id"] = tripID
	}
	if errKind := out.GetString("error"); errKind != "" {
		final["error"] = errKind
	}
	if sessionID := out.GetString("session_id"); sessionID != "" {
		final["session_id"] = sessionID
	}
	if suggestions, ok := out.Get("suggestions"); ok {
		final["suggestions"] = suggestions
	}
	if matches, ok := out.Get("matches"); ok {
		final["options"] = matches
	}
	if options, ok := out.Get("options"); ok {
		final["options"] = options
	}
	if execType, ok := out.Get("exec_type"); ok {
		final["type"] = execType
		final["data"] = out["exec_data"]
	}
	if out.GetBool("wizard_active") {
		final["type"] = "help"
		final["wizard_question"] = out.GetString("wizard_question")
		final["wizard_hint"] = out.GetString("wizard_hint")
		final["wizard_step"] = out["wizard_step"]
		final["wizard_steps_total"] = out["wizard_steps_total"]
	}

	out["final_output"] = final
	return out, nil
}

// defaultMessage fills in a human sentence when no node set one
// explicitly, so report_result never emits an empty message field.
func defaultMessage(s state.State, status string) string {
	switch status {
	case "awaiting_confirmation":
		return "This action needs your confirmation before it runs."
	case "cancelled":
		return "No changes were made."
	case "executed":
		return "Done."
	case "failed":
		return "The request could not be completed."
	default:
		return "Request processed."
	}
}
