package nodes

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/state"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// AnalyseConsequences is the consequence analyser node (C7). For risky
// actions it computes booking impact, deployment state, and live status,
// then decides whether confirmation is required, producing one warning
// sentence per reason — never fabricated, always tied to a computed fact.
func (d *Deps) AnalyseConsequences(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	action := out.GetString("action")
	tripID, _ := out.GetInt64("trip_id")

	view, err := d.Tools.GetTripStatus(ctx, tripID)
	if err != nil {
		out["error"] = "target_not_found"
		out["message"] = "The trip for this action could no longer be found."
		out["next_node"] = "report_result"
		return out, nil
	}

	capacity := view.VehicleCap
	if capacity == 0 {
		capacity = tools.DefaultVehicleCapacity
	}
	hasDeployment := view.Deployment != nil
	liveStatus := string(view.Trip.LiveStatus)

	consequences := map[string]any{
		"booking_count":      view.BookingCount,
		"booking_percentage": float64(view.BookingCount) / float64(capacity),
		"has_deployment":     hasDeployment,
		"live_status":        liveStatus,
	}
	out["consequences"] = consequences

	var warnings []string
	needsConfirmation := false

	if view.BookingCount > 0 {
		needsConfirmation = true
		warnings = append(warnings, fmt.Sprintf("This trip has %d confirmed booking(s).", view.BookingCount))
	}
	if liveStatus == string(models.TripInProgress) {
		needsConfirmation = true
		warnings = append(warnings, "This trip is currently in progress.")
	}
	if action == "assign_vehicle" && hasDeployment {
		needsConfirmation = true
		warnings = append(warnings, "This will replace the vehicle already assigned to this trip.")
	}
	if llmclient.IsAlwaysConfirm(action) {
		needsConfirmation = true
		warnings = append(warnings, "This action cannot be undone automatically.")
	}

	out["needs_confirmation"] = needsConfirmation
	out["warning_messages"] = warnings

	if needsConfirmation {
		out["next_node"] = "confirm_gate"
	} else {
		out["next_node"] = "executor"
	}
	return out, nil
}
