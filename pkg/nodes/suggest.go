package nodes

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// SuggestionProvider is the C12 suggestion provider, used on an OCR match:
// it examines the resolved trip's deployment/booking/live state and emits
// a small, ordered list of contextual next actions.
func (d *Deps) SuggestionProvider(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	tripID, _ := out.GetInt64("trip_id")

	view, err := d.Tools.GetTripStatus(ctx, tripID)
	if err != nil {
		out["error"] = "target_not_found"
		out["message"] = "The matched trip could no longer be found."
		out["next_node"] = "report_result"
		return out, nil
	}

	var suggestions []map[string]any
	if view.Deployment == nil || view.Deployment.VehicleID == nil {
		suggestions = append(suggestions, map[string]any{"action": "assign_vehicle", "label": "Assign a vehicle", "trip_id": tripID})
	} else {
		suggestions = append(suggestions, map[string]any{"action": "remove_vehicle", "label": "Remove vehicle", "trip_id": tripID})
	}
	if view.Deployment == nil || view.Deployment.DriverID == nil {
		suggestions = append(suggestions, map[string]any{"action": "assign_driver", "label": "Assign a driver", "trip_id": tripID})
	}
	suggestions = append(suggestions, map[string]any{"action": "get_trip_status", "label": "View status", "trip_id": tripID})

	cancelSuggestion := map[string]any{"action": "cancel_trip", "label": "Cancel trip", "trip_id": tripID}
	if view.BookingCount > 0 {
		cancelSuggestion["warning"] = true
		cancelSuggestion["label"] = fmt.Sprintf("Cancel trip (%d booking(s) will be cancelled)", view.BookingCount)
	}
	suggestions = append(suggestions, cancelSuggestion)

	out["suggestions"] = suggestions
	out["next_node"] = "report_result"
	return out, nil
}

// OfferCreation is the "offer creation" node the router sends an
// OCR-without-match request to (§4.6 step 5): there was no trip to act on,
// so the user is invited to create one instead of hitting a dead end.
func (d *Deps) OfferCreation(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	out["message"] = "No matching trip was found for the scanned text. Would you like to create a new trip?"
	out["suggestions"] = []map[string]any{
		{"action": "create_trip_from_scratch", "label": "Create a new trip"},
	}
	out["next_node"] = "report_result"
	return out, nil
}
