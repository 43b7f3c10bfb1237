package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TimeBecomesString(t *testing.T) {
	ts := time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)
	got := Normalize(ts)
	assert.Equal(t, "2026-03-05T10:30:00Z", got)
}

func TestNormalize_DurationBecomesString(t *testing.T) {
	got := Normalize(90 * time.Minute)
	assert.Equal(t, "1h30m0s", got)
}

func TestNormalize_NestedDatesInsideListsInsideMaps(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	input := State{
		"action": "assign_vehicle",
		"trip_id": int64(5),
		"wizard_data": map[string]any{
			"stops": []any{
				map[string]any{"name": "Depot", "arrival": ts},
				map[string]any{"name": "Terminus", "arrival": ts.Add(time.Hour)},
			},
		},
	}

	got := Normalize(input)
	asMap, ok := got.(map[string]any)
	require.True(t, ok)

	wizardData := asMap["wizard_data"].(map[string]any)
	stops := wizardData["stops"].([]any)
	require.Len(t, stops, 2)

	first := stops[0].(map[string]any)
	assert.Equal(t, "2026-01-01T00:00:00Z", first["arrival"])
	assert.Equal(t, float64(5), asMap["trip_id"])
}

func TestNormalize_RoundTripIdempotent(t *testing.T) {
	input := map[string]any{
		"count": 3,
		"tags":  []string{"a", "b"},
	}
	once := Normalize(input)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestNormalize_NilPassthrough(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}
