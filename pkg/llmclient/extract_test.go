package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	var out rawIntent
	ok := extractJSON(`{"action": "cancel_trip", "confidence": 0.9}`, &out)
	require.True(t, ok)
	assert.Equal(t, "cancel_trip", out.Action)
}

func TestExtractJSON_MarkdownFence(t *testing.T) {
	var out rawIntent
	ok := extractJSON("here is the result:\n```json\n{\"action\": \"assign_vehicle\", \"confidence\": 0.7}\n```", &out)
	require.True(t, ok)
	assert.Equal(t, "assign_vehicle", out.Action)
}

func TestExtractJSON_TrailingComma(t *testing.T) {
	var out rawIntent
	ok := extractJSON(`{"action": "cancel_trip", "confidence": 0.9,}`, &out)
	require.True(t, ok)
	assert.Equal(t, "cancel_trip", out.Action)
}

func TestExtractJSON_NoJSONRecoverable(t *testing.T) {
	var out rawIntent
	ok := extractJSON("I'm not sure what you mean.", &out)
	assert.False(t, ok)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-0.5))
	assert.Equal(t, 1.0, clampConfidence(1.5))
	assert.Equal(t, 0.6, clampConfidence(0.6))
}
