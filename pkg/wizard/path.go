package wizard

import (
	"context"
	"fmt"

	"github.com/tarsy-transit/opsagent/pkg/tools"
)

func init() {
	register(&Definition{
		Type: "create_path",
		Steps: []Step{
			{Field: "name", Question: "What is the name of the new path?", Hint: "e.g. \"Downtown Loop\"", Validate: ValidateDisplayName},
			{
				Field:    "stop_ids",
				Question: "Which stops does this path visit, in order? Enter their ids separated by commas.",
				Hint:     "e.g. \"3,7,12\"",
				Validate: ValidateCommaSeparatedIDs,
				Options: func(ctx context.Context, t tools.Tooling, _ map[string]any) ([]OptionRecord, error) {
					stops, err := t.ListAllStops(ctx)
					if err != nil {
						return nil, fmt.Errorf("list stops for path wizard: %w", err)
					}
					out := make([]OptionRecord, 0, len(stops))
					for _, s := range stops {
						out = append(out, OptionRecord{Value: fmt.Sprintf("%d", s.StopID), Label: s.Name})
					}
					return out, nil
				},
			},
			{
				Field:    "confirm",
				Question: "Create this path with the stops above in that order?",
				Hint:     "yes / no",
				Validate: validateYesNo,
			},
		},
		Complete: func(ctx context.Context, t tools.Tooling, data map[string]any, userID string) (map[string]any, error) {
			name, _ := data["name"].(string)
			ids, _ := data["stop_ids"].([]int64)
			if confirmed, _ := data["confirm"].(bool); !confirmed {
				return map[string]any{"created": false}, nil
			}
			path, err := t.CreatePath(ctx, name, ids, userID)
			if err != nil {
				return nil, fmt.Errorf("create path: %w", err)
			}
			return map[string]any{"path_id": path.PathID, "name": path.Name, "created": true}, nil
		},
	})
}
