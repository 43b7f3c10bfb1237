package llmclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	calls   int
	err     error
	replies []string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.calls-1 < len(s.replies) {
		return s.replies[s.calls-1], nil
	}
	return s.replies[len(s.replies)-1], nil
}

func TestClient_Parse_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "primary", replies: []string{`{"action": "cancel_trip", "confidence": 0.9, "clarify": false, "clarify_options": [], "parameters": {}}`}}
	client := NewClient(primary)

	intent := client.Parse(context.Background(), "cancel trip 5", Context{CurrentPage: "trip_detail"})
	assert.Equal(t, "cancel_trip", intent.Action)
	assert.Equal(t, 0.9, intent.Confidence)
	assert.Equal(t, 1, primary.calls)
}

func TestClient_Parse_FallsBackToSecondaryOnPrimaryError(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("connection refused")}
	secondary := &stubProvider{name: "secondary", replies: []string{`{"action": "assign_driver", "confidence": 0.8, "clarify": false, "clarify_options": [], "parameters": {}}`}}
	client := NewClient(primary, WithSecondary(secondary))
	client.maxRetry = 0 // avoid real sleep-based retries in the test

	intent := client.Parse(context.Background(), "assign a driver", Context{})
	assert.Equal(t, "assign_driver", intent.Action)
	require.True(t, secondary.calls >= 1)
}

func TestClient_Parse_FallsBackToRegexWhenBothProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("timeout")}
	secondary := &stubProvider{name: "secondary", err: errors.New("timeout")}
	client := NewClient(primary, WithSecondary(secondary))
	client.maxRetry = 0

	intent := client.Parse(context.Background(), "cancel trip 9", Context{})
	assert.Equal(t, "cancel_trip", intent.Action)
	require.NotNil(t, intent.TargetEntityID)
	assert.Equal(t, int64(9), *intent.TargetEntityID)
}

func TestClient_Parse_UnrecoverableJSONFallsBackToRegex(t *testing.T) {
	primary := &stubProvider{name: "primary", replies: []string{"I'm not sure what to do."}}
	client := NewClient(primary)

	intent := client.Parse(context.Background(), "what a lovely day", Context{})
	assert.Equal(t, "unknown", intent.Action)
	assert.Equal(t, float64(0), intent.Confidence)
}

func TestClient_Parse_UnknownActionZeroesConfidence(t *testing.T) {
	primary := &stubProvider{name: "primary", replies: []string{`{"action": "reboot_server", "confidence": 0.9, "clarify": false, "clarify_options": [], "parameters": {}}`}}
	client := NewClient(primary)

	intent := client.Parse(context.Background(), "reboot the server", Context{})
	assert.Equal(t, "unknown", intent.Action)
	assert.Equal(t, float64(0), intent.Confidence)
}
