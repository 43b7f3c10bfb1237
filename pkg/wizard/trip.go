package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// validateIDOrSkip accepts a positive integer id or the literal "skip".
func validateIDOrSkip(raw string, _ map[string]any) (any, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "skip" {
		return int64(0), nil
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("expected a positive id or \"skip\", got %q", raw)
	}
	return n, nil
}

func init() {
	register(&Definition{
		Type: "create_trip_from_scratch",
		Steps: []Step{
			{
				Field:    "route_id",
				Question: "Which route is this trip running on?",
				Hint:     "enter the route id",
				Validate: ValidatePositiveInt,
				Options: func(ctx context.Context, t tools.Tooling, _ map[string]any) ([]OptionRecord, error) {
					routes, err := t.ListAllRoutes(ctx)
					if err != nil {
						return nil, fmt.Errorf("list routes for trip wizard: %w", err)
					}
					out := make([]OptionRecord, 0, len(routes))
					for _, r := range routes {
						out = append(out, OptionRecord{Value: fmt.Sprintf("%d", r.RouteID), Label: fmt.Sprintf("route %d (%s)", r.RouteID, r.Direction)})
					}
					return out, nil
				},
			},
			{Field: "trip_date", Question: "What date does this trip run?", Hint: "YYYY-MM-DD", Validate: ValidateISODate},
			{Field: "scheduled_time", Question: "What time does this trip depart?", Hint: "HH:MM, 24-hour", Validate: ValidateHHMM},
			{Field: "display_name", Question: "What display name should this trip carry?", Hint: "e.g. \"Morning Express 07:00\"", Validate: ValidateDisplayName},
			{Field: "vehicle_id", Question: "Assign a vehicle now? Enter a vehicle id, or \"skip\".", Hint: "vehicle availability is checked when you later assign it", Validate: validateIDOrSkip},
			{Field: "driver_id", Question: "Assign a driver now? Enter a driver id, or \"skip\".", Hint: "driver availability is checked when you later assign it", Validate: validateIDOrSkip},
			{Field: "confirm", Question: "Create this trip with the details above?", Hint: "yes / no", Validate: validateYesNo},
		},
		Complete: func(ctx context.Context, t tools.Tooling, data map[string]any, userID string) (map[string]any, error) {
			if confirmed, _ := data["confirm"].(bool); !confirmed {
				return map[string]any{"created": false}, nil
			}
			routeID, _ := data["route_id"].(int64)
			displayName, _ := data["display_name"].(string)
			tripDateStr, _ := data["trip_date"].(string)
			scheduledTimeStr, _ := data["scheduled_time"].(string)

			tripDate, err := time.Parse("2006-01-02", tripDateStr)
			if err != nil {
				return nil, fmt.Errorf("create trip: parse trip date: %w", err)
			}
			timeOfDay, err := time.Parse("15:04", scheduledTimeStr)
			if err != nil {
				return nil, fmt.Errorf("create trip: parse scheduled time: %w", err)
			}
			scheduledTime := time.Date(tripDate.Year(), tripDate.Month(), tripDate.Day(), timeOfDay.Hour(), timeOfDay.Minute(), 0, 0, time.UTC)

			trip, err := t.CreateTrip(ctx, routeID, tripDate, scheduledTime, displayName, userID)
			if err != nil {
				return nil, fmt.Errorf("create trip: %w", err)
			}

			result := map[string]any{"trip_id": trip.TripID, "display_name": trip.DisplayName, "created": true}

			if vehicleID, _ := data["vehicle_id"].(int64); vehicleID > 0 {
				driverIDPtr := (*int64)(nil)
				if driverID, _ := data["driver_id"].(int64); driverID > 0 {
					driverIDPtr = &driverID
				}
				if _, err := t.AssignVehicle(ctx, trip.TripID, vehicleID, driverIDPtr, userID, false); err != nil {
					result["vehicle_assignment_error"] = err.Error()
				} else {
					result["vehicle_id"] = vehicleID
				}
			} else if driverID, _ := data["driver_id"].(int64); driverID > 0 {
				if _, err := t.AssignDriver(ctx, trip.TripID, driverID, userID); err != nil {
					result["driver_assignment_error"] = err.Error()
				} else {
					result["driver_id"] = driverID
				}
			}

			return result, nil
		},
	})
}
