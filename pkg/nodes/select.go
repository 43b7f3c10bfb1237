package nodes

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

// SelectionProvider is the C12 vehicle/driver selection provider: it
// returns an ordered list of currently available entities for the
// target trip's window, which the UI renders as buttons mapping to
// structured commands (§4.12).
func (d *Deps) SelectionProvider(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	tripID, _ := out.GetInt64("trip_id")
	kind := out.GetString("selection_kind")

	var options []map[string]any
	switch kind {
	case "vehicle":
		vehicles, err := d.Tools.ListAvailableVehicles(ctx, tripID)
		if err != nil {
			out["error"] = "target_not_found"
			out["message"] = "Could not look up available vehicles."
			out["next_node"] = "report_result"
			return out, nil
		}
		for _, v := range vehicles {
			options = append(options, map[string]any{
				"value": fmt.Sprintf("%d", v.VehicleID),
				"label": fmt.Sprintf("%s (%s, capacity %d)", v.RegistrationNumber, v.VehicleType, v.Capacity),
			})
		}
	case "driver":
		drivers, err := d.Tools.ListAvailableDrivers(ctx, tripID)
		if err != nil {
			out["error"] = "target_not_found"
			out["message"] = "Could not look up available drivers."
			out["next_node"] = "report_result"
			return out, nil
		}
		for _, dr := range drivers {
			options = append(options, map[string]any{"value": fmt.Sprintf("%d", dr.DriverID), "label": dr.Name})
		}
	default:
		out["error"] = "invalid_request"
		out["message"] = fmt.Sprintf("unknown selection kind %q", kind)
		out["next_node"] = "report_result"
		return out, nil
	}

	out["options"] = options
	out["message"] = fmt.Sprintf("Pick a %s.", kind)
	out["next_node"] = "report_result"
	return out, nil
}
