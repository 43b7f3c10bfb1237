package nodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/state"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// execResult is the uniform shape an ActionHandler produces: the data
// shape tag C10 copies onto final_output.type, the payload itself, and a
// human-readable summary.
type execResult struct {
	Type    string
	Data    any
	Message string
}

// ActionHandler invokes one tool-layer operation using the ids and
// parameters already placed on State, and reports a uniform result.
//
// The table below is the reimplementation §9 calls for in place of the
// source's branched dispatch: the table is the single source of truth, so
// the Action Registry (pkg/llmclient) and the executor can never drift
// apart the way a growing if/else chain invites.
type ActionHandler func(ctx context.Context, t tools.Tooling, s state.State) (execResult, error)

var actionHandlers = map[string]ActionHandler{
	"get_trip_status":      handleGetTripStatus,
	"get_bookings":         handleGetBookings,
	"list_all_stops":       handleListAllStops,
	"list_all_paths":       handleListAllPaths,
	"list_all_routes":      handleListAllRoutes,
	"get_unassigned_trips": handleGetUnassignedTrips,
	"assign_vehicle":       handleAssignVehicle,
	"assign_driver":        handleAssignDriver,
	"remove_vehicle":       handleRemoveVehicle,
	"cancel_trip":          handleCancelTrip,
	"update_trip_time":     handleUpdateTripTime,
	"create_stop":          handleCreateStop,
	"create_path":          handleCreatePath,
	"create_route":         handleCreateRoute,
}

// Execute is the action executor node (C10). It dispatches on `action`
// through the table above, places the outcome in execution_result, and
// tags final_output's data shape.
func (d *Deps) Execute(ctx context.Context, s state.State) (state.State, error) {
	out := s.Snapshot()
	action := out.GetString("action")

	handler, ok := actionHandlers[action]
	if !ok {
		out["status"] = "failed"
		out["error"] = "unknown_action"
		out["message"] = fmt.Sprintf("no executor registered for action %q", action)
		out["next_node"] = "report_result"
		return out, nil
	}

	res, err := handler(ctx, d.Tools, out)
	if err != nil {
		out["status"] = "failed"
		out["error"] = classifyToolError(err)
		out["message"] = humanToolMessage(err)
		out["next_node"] = "report_result"
		return out, nil
	}

	out["status"] = "executed"
	out["execution_result"] = map[string]any{"ok": true, "message": res.Message}
	out["exec_type"] = res.Type
	out["exec_data"] = res.Data
	out["message"] = res.Message
	out["next_node"] = "report_result"
	return out, nil
}

// classifyToolError maps a tool-layer sentinel to the error taxonomy (§7).
func classifyToolError(err error) string {
	switch {
	case errors.Is(err, tools.ErrTripNotFound), errors.Is(err, tools.ErrVehicleNotFound), errors.Is(err, tools.ErrDriverNotFound),
		errors.Is(err, tools.ErrStopNotFound), errors.Is(err, tools.ErrPathNotFound), errors.Is(err, tools.ErrRouteNotFound):
		return "target_not_found"
	case errors.Is(err, tools.ErrTripCancelled):
		return "trip_cancelled"
	case errors.Is(err, tools.ErrTripPast):
		return "trip_past"
	case errors.Is(err, tools.ErrAlreadyDeployed):
		return "already_deployed"
	case errors.Is(err, tools.ErrVehicleUnavailable):
		return "vehicle_unavailable"
	case errors.Is(err, tools.ErrDriverUnavailable):
		return "driver_unavailable"
	case errors.Is(err, tools.ErrNoDeployment):
		return "no_deployment"
	case errors.Is(err, tools.ErrPastTimestamp), errors.Is(err, tools.ErrInvalidInput):
		return "invalid_request"
	default:
		return "internal_error"
	}
}

// humanToolMessage returns the error's own message, which every tools.Err*
// sentinel already carries as a human-safe sentence (§7: "internal
// exception text is not leaked").
func humanToolMessage(err error) string {
	return err.Error()
}

func handleGetTripStatus(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	view, err := t.GetTripStatus(ctx, tripID)
	if err != nil {
		return execResult{}, err
	}
	data := map[string]any{
		"trip_id":       view.Trip.TripID,
		"display_name":  view.Trip.DisplayName,
		"live_status":   view.Trip.LiveStatus,
		"booking_count": view.BookingCount,
	}
	if view.Deployment != nil {
		data["deployment"] = view.Deployment
	}
	return execResult{Type: "object", Data: data, Message: fmt.Sprintf("Trip %q status retrieved.", view.Trip.DisplayName)}, nil
}

func handleGetBookings(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	bookings, err := t.GetBookings(ctx, tripID)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "table", Data: bookings, Message: fmt.Sprintf("%d confirmed booking(s).", len(bookings))}, nil
}

func handleListAllStops(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	stops, err := t.ListAllStops(ctx)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "table", Data: stops, Message: fmt.Sprintf("%d stop(s).", len(stops))}, nil
}

func handleListAllPaths(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	paths, err := t.ListAllPaths(ctx)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "table", Data: paths, Message: fmt.Sprintf("%d path(s).", len(paths))}, nil
}

func handleListAllRoutes(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	routes, err := t.ListAllRoutes(ctx)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "table", Data: routes, Message: fmt.Sprintf("%d route(s).", len(routes))}, nil
}

func handleGetUnassignedTrips(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	trips, err := t.GetUnassignedTrips(ctx)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "table", Data: trips, Message: fmt.Sprintf("%d trip(s) without a deployed vehicle.", len(trips))}, nil
}

// handleAssignVehicle performs a compound assignment in one tool
// transaction when the payload also carries a driver_id, rather than
// splitting it into two separate executions (§4.10).
func handleAssignVehicle(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	params := paramsOf(s)
	vehicleID, ok := paramInt64(params, "vehicle_id")
	if !ok {
		return execResult{}, tools.ErrInvalidInput
	}
	var driverIDPtr *int64
	if driverID, ok := paramInt64(params, "driver_id"); ok {
		driverIDPtr = &driverID
	}
	override := paramBool(params, "override")

	dep, err := t.AssignVehicle(ctx, tripID, vehicleID, driverIDPtr, s.GetString("user_id"), override)
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: dep, Message: "Vehicle assigned."}, nil
}

func handleAssignDriver(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	driverID, ok := paramInt64(paramsOf(s), "driver_id")
	if !ok {
		return execResult{}, tools.ErrInvalidInput
	}
	dep, err := t.AssignDriver(ctx, tripID, driverID, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: dep, Message: "Driver assigned."}, nil
}

func handleRemoveVehicle(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	dep, err := t.RemoveVehicle(ctx, tripID, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: dep, Message: "Vehicle removed."}, nil
}

func handleCancelTrip(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	trip, err := t.CancelTrip(ctx, tripID, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: trip, Message: fmt.Sprintf("Trip %q cancelled.", trip.DisplayName)}, nil
}

func handleUpdateTripTime(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	tripID, _ := s.GetInt64("trip_id")
	params := paramsOf(s)
	newTimeStr, ok := paramString(params, "new_time")
	if !ok {
		newTimeStr = s.GetString("target_time")
	}
	if newTimeStr == "" {
		return execResult{}, tools.ErrInvalidInput
	}

	view, err := t.GetTripStatus(ctx, tripID)
	if err != nil {
		return execResult{}, err
	}
	hhmm, err := time.Parse("15:04", newTimeStr)
	if err != nil {
		return execResult{}, tools.ErrInvalidInput
	}
	tripDate := view.Trip.TripDate
	newTime := time.Date(tripDate.Year(), tripDate.Month(), tripDate.Day(), hhmm.Hour(), hhmm.Minute(), 0, 0, time.UTC)

	trip, err := t.UpdateTripTime(ctx, tripID, newTime, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: trip, Message: fmt.Sprintf("Trip %q rescheduled to %s.", trip.DisplayName, newTimeStr)}, nil
}

func handleCreateStop(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	params := paramsOf(s)
	name, _ := paramString(params, "name")
	lat, _ := params["latitude"].(float64)
	long, _ := params["longitude"].(float64)
	landmark, _ := paramString(params, "landmark")
	if name == "" {
		return execResult{}, tools.ErrInvalidInput
	}
	stop, err := t.CreateStop(ctx, name, lat, long, landmark, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: stop, Message: fmt.Sprintf("Stop %q created.", stop.Name)}, nil
}

func handleCreatePath(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	params := paramsOf(s)
	name, _ := paramString(params, "name")
	rawIDs, _ := params["stop_ids"].([]any)
	ids := make([]int64, 0, len(rawIDs))
	for _, raw := range rawIDs {
		if n, ok := raw.(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	if name == "" || len(ids) == 0 {
		return execResult{}, tools.ErrInvalidInput
	}
	path, err := t.CreatePath(ctx, name, ids, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: path, Message: fmt.Sprintf("Path %q created.", path.Name)}, nil
}

func handleCreateRoute(ctx context.Context, t tools.Tooling, s state.State) (execResult, error) {
	params := paramsOf(s)
	pathID, ok := paramInt64(params, "path_id")
	directionStr, _ := paramString(params, "direction")
	shiftTimeStr, _ := paramString(params, "shift_time")
	if !ok || directionStr == "" || shiftTimeStr == "" {
		return execResult{}, tools.ErrInvalidInput
	}
	shiftTime, err := time.Parse("15:04", shiftTimeStr)
	if err != nil {
		return execResult{}, tools.ErrInvalidInput
	}
	route, err := t.CreateRoute(ctx, pathID, models.Direction(directionStr), shiftTime, s.GetString("user_id"))
	if err != nil {
		return execResult{}, err
	}
	return execResult{Type: "object", Data: route, Message: "Route created."}, nil
}
