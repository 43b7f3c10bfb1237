package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFallback_CancelWithTripID(t *testing.T) {
	intent := RegexFallback("cancel trip 42 please")
	assert.Equal(t, "cancel_trip", intent.Action)
	assert.Equal(t, regexFallbackConfidence, intent.Confidence)
	require.NotNil(t, intent.TargetEntityID)
	assert.Equal(t, int64(42), *intent.TargetEntityID)
}

func TestRegexFallback_HashID(t *testing.T) {
	intent := RegexFallback("what's the status of #7")
	assert.Equal(t, "get_trip_status", intent.Action)
	require.NotNil(t, intent.TargetEntityID)
	assert.Equal(t, int64(7), *intent.TargetEntityID)
}

func TestRegexFallback_NoMatchReturnsUnknown(t *testing.T) {
	intent := RegexFallback("what a lovely day")
	assert.Equal(t, "unknown", intent.Action)
	assert.Equal(t, float64(0), intent.Confidence)
}

func TestRegexFallback_NeverEmitsParametersBeyondIDs(t *testing.T) {
	intent := RegexFallback("assign a vehicle to trip 10")
	assert.Empty(t, intent.Parameters)
	require.NotNil(t, intent.TargetEntityID)
	assert.Equal(t, int64(10), *intent.TargetEntityID)
}
