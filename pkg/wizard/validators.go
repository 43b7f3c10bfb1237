package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validated wraps a single value under a struct tag so validator's
// struct-tag scaffolding (built for whole structs) can check one scalar
// at a time — the "small adapter function" shape named in SPEC_FULL §3.7.
type validated struct {
	Value string `validate:"required"`
}

func runTag(raw, tag string) error {
	v := validated{Value: raw}
	if err := validate.Var(v.Value, tag); err != nil {
		return fmt.Errorf("invalid value %q: %w", raw, err)
	}
	return nil
}

// ValidateDisplayName accepts any non-empty, non-whitespace-only string.
func ValidateDisplayName(raw string, _ map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if err := runTag(trimmed, "required"); err != nil {
		return nil, fmt.Errorf("display name is required")
	}
	return trimmed, nil
}

// ValidateISODate requires "YYYY-MM-DD" and rejects dates in the past.
func ValidateISODate(raw string, _ map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if err := runTag(trimmed, "required,datetime=2006-01-02"); err != nil {
		return nil, fmt.Errorf("expected a date in YYYY-MM-DD format, got %q", raw)
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, fmt.Errorf("expected a date in YYYY-MM-DD format, got %q", raw)
	}
	if parsed.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("date %q is in the past", raw)
	}
	return trimmed, nil
}

// ValidateHHMM requires "HH:MM" 24-hour time.
func ValidateHHMM(raw string, _ map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if err := runTag(trimmed, "required,datetime=15:04"); err != nil {
		return nil, fmt.Errorf("expected a time in HH:MM format, got %q", raw)
	}
	return trimmed, nil
}

// ValidatePositiveInt requires a base-10 integer greater than zero.
func ValidatePositiveInt(raw string, _ map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if err := runTag(trimmed, "required,numeric"); err != nil {
		return nil, fmt.Errorf("expected a positive integer, got %q", raw)
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("expected a positive integer, got %q", raw)
	}
	return n, nil
}

// ValidateDirection requires "up" or "down" (case-insensitive).
func ValidateDirection(raw string, _ map[string]any) (any, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if err := runTag(trimmed, "required,oneof=up down"); err != nil {
		return nil, fmt.Errorf("expected 'up' or 'down', got %q", raw)
	}
	return trimmed, nil
}

// validateYesNo accepts a yes/no confirmation.
func validateYesNo(raw string, _ map[string]any) (any, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	switch trimmed {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return nil, fmt.Errorf("expected yes or no, got %q", raw)
	}
}

// ValidateCommaSeparatedIDs parses a comma-separated list of positive
// integer entity ids, e.g. a path's ordered stop selection.
func ValidateCommaSeparatedIDs(raw string, _ map[string]any) (any, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("expected a comma-separated list of positive ids, got %q", raw)
		}
		ids = append(ids, n)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one stop id is required")
	}
	return ids, nil
}
