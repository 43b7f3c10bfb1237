package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// validateLatLong accepts a decimal degree coordinate in the given range.
func validateLatLong(min, max float64) func(string, map[string]any) (any, error) {
	return func(raw string, _ map[string]any) (any, error) {
		trimmed := strings.TrimSpace(raw)
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || f < min || f > max {
			return nil, fmt.Errorf("expected a decimal coordinate between %v and %v, got %q", min, max, raw)
		}
		return f, nil
	}
}

// validateLandmark accepts free text, including an empty "none" answer.
func validateLandmark(raw string, _ map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "none") {
		return "", nil
	}
	return trimmed, nil
}

func init() {
	register(&Definition{
		Type: "create_stop",
		Steps: []Step{
			{Field: "name", Question: "What is the name of the new stop?", Hint: "e.g. \"Market Square\"", Validate: ValidateDisplayName},
			{Field: "latitude", Question: "What is the stop's latitude?", Hint: "decimal degrees, e.g. 12.9716", Validate: validateLatLong(-90, 90)},
			{Field: "longitude", Question: "What is the stop's longitude?", Hint: "decimal degrees, e.g. 77.5946", Validate: validateLatLong(-180, 180)},
			{Field: "landmark", Question: "Any nearby landmark? (or say \"none\")", Hint: "e.g. \"opposite the post office\"", Validate: validateLandmark},
		},
		Complete: func(ctx context.Context, t tools.Tooling, data map[string]any, userID string) (map[string]any, error) {
			name, _ := data["name"].(string)
			lat, _ := data["latitude"].(float64)
			long, _ := data["longitude"].(float64)
			landmark, _ := data["landmark"].(string)
			stop, err := t.CreateStop(ctx, name, lat, long, landmark, userID)
			if err != nil {
				return nil, fmt.Errorf("create stop: %w", err)
			}
			return map[string]any{"stop_id": stop.StopID, "name": stop.Name}, nil
		},
	})
}
