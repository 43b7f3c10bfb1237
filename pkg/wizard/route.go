package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

func init() {
	register(&Definition{
		Type: "create_route",
		Steps: []Step{
			{
				Field:    "path_id",
				Question: "Which path does this route follow?",
				Hint:     "enter the path id",
				Validate: ValidatePositiveInt,
				Options: func(ctx context.Context, t tools.Tooling, _ map[string]any) ([]OptionRecord, error) {
					paths, err := t.ListAllPaths(ctx)
					if err != nil {
						return nil, fmt.Errorf("list paths for route wizard: %w", err)
					}
					out := make([]OptionRecord, 0, len(paths))
					for _, p := range paths {
						out = append(out, OptionRecord{Value: fmt.Sprintf("%d", p.PathID), Label: p.Name})
					}
					return out, nil
				},
			},
			{Field: "direction", Question: "Which direction does this route travel?", Hint: "up / down", Validate: ValidateDirection},
			{Field: "shift_time", Question: "What time does this shift start?", Hint: "HH:MM, 24-hour", Validate: ValidateHHMM},
			{Field: "confirm", Question: "Create this route?", Hint: "yes / no", Validate: validateYesNo},
		},
		Complete: func(ctx context.Context, t tools.Tooling, data map[string]any, userID string) (map[string]any, error) {
			if confirmed, _ := data["confirm"].(bool); !confirmed {
				return map[string]any{"created": false}, nil
			}
			pathID, _ := data["path_id"].(int64)
			direction, _ := data["direction"].(string)
			shiftTimeStr, _ := data["shift_time"].(string)
			shiftTime, err := time.Parse("15:04", shiftTimeStr)
			if err != nil {
				return nil, fmt.Errorf("create route: parse shift time: %w", err)
			}
			route, err := t.CreateRoute(ctx, pathID, models.Direction(direction), shiftTime, userID)
			if err != nil {
				return nil, fmt.Errorf("create route: %w", err)
			}
			return map[string]any{"route_id": route.RouteID, "created": true}, nil
		},
	})
}
