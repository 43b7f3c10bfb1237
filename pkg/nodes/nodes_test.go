package nodes_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-transit/opsagent/pkg/graph"
	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/nodes"
	"github.com/tarsy-transit/opsagent/pkg/session"
	"github.com/tarsy-transit/opsagent/pkg/state"
	"github.com/tarsy-transit/opsagent/pkg/toolsfake"
)

// stubLLM always returns a fixed Intent, so tests can pin the "LLM parse"
// path without a live provider.
type stubLLM struct {
	intent llmclient.Intent
}

func (s stubLLM) Parse(ctx context.Context, text string, reqCtx llmclient.Context) llmclient.Intent {
	return s.intent
}

// stubSessions is an in-memory SessionCreator double, recording every
// pending_action it was asked to persist.
type stubSessions struct {
	created []map[string]any
}

func (s *stubSessions) Create(ctx context.Context, userID string, pendingAction map[string]any) (*session.Session, error) {
	s.created = append(s.created, pendingAction)
	return &session.Session{SessionID: uuid.New(), UserID: userID, Status: session.StatusPending, PendingAction: pendingAction}, nil
}

func buildGraph(t *testing.T, fake *toolsfake.Fake, llm nodes.LLMParser, sessions nodes.SessionCreator) *graph.Graph {
	t.Helper()
	d := &nodes.Deps{Tools: fake, LLM: llm, Sessions: sessions}
	g, err := nodes.BuildGraph(d)
	require.NoError(t, err)
	return g
}

func seedTripWithBookings(fake *toolsfake.Fake, tripID int64, bookingCount int, vehicleID int64) {
	fake.SeedTrip(models.Trip{
		TripID:        tripID,
		DisplayName:   "Path-3 - 07:30",
		TripDate:      time.Now().Add(24 * time.Hour),
		ScheduledTime: time.Now().Add(24 * time.Hour),
		RouteID:       1,
		LiveStatus:    models.TripScheduled,
	})
	if vehicleID != 0 {
		fake.SeedVehicle(models.Vehicle{VehicleID: vehicleID, RegistrationNumber: "KA-01-1234", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleDeployed})
		fake.SeedDeployment(models.Deployment{TripID: tripID, VehicleID: &vehicleID, DeployedAt: time.Now()})
	}
	for i := 0; i < bookingCount; i++ {
		// bookings are private to the fake's internal map and cannot be
		// seeded from this package, so this helper is limited to
		// deployment-bearing setup: bookingCount seeds nothing, and every
		// caller passes 0.
		_ = i
	}
}

func TestRiskyRemove_ConfirmPath_RequiresConfirmationAndPersistsSession(t *testing.T) {
	fake := toolsfake.New()
	seedTripWithBookings(fake, 5, 0, 10)
	sessions := &stubSessions{}
	action := "remove_vehicle"
	llm := stubLLM{intent: llmclient.Intent{Action: action, Confidence: 0.9, Parameters: map[string]any{}}}
	g := buildGraph(t, fake, llm, sessions)

	input := state.State{
		"text":         "Remove vehicle from Path-3 - 07:30",
		"user_id":      "dispatcher-1",
		"current_page": "trip_ops",
		"selected_entity_id": int64(5),
	}
	out := g.Run(context.Background(), input)

	final, ok := out["final_output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, final["needs_confirmation"])
	sessionID, ok := final["session_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, sessionID)
	assert.Len(t, sessions.created, 1)
	assert.Equal(t, "remove_vehicle", sessions.created[0]["action"])
}

func TestSafeRead_NeedsNoConfirmationAndReturnsTable(t *testing.T) {
	fake := toolsfake.New()
	_, err := fake.CreateStop(context.Background(), "Market Square", 0, 0, "", "dispatcher-1")
	require.NoError(t, err)
	sessions := &stubSessions{}
	llm := stubLLM{intent: llmclient.Intent{Action: "list_all_stops", Confidence: 0.9, Parameters: map[string]any{}}}
	g := buildGraph(t, fake, llm, sessions)

	out := g.Run(context.Background(), state.State{
		"text": "list all stops", "user_id": "dispatcher-1", "current_page": "config",
	})

	final := out["final_output"].(map[string]any)
	assert.Equal(t, false, final["needs_confirmation"])
	assert.Equal(t, "table", final["type"])
	assert.Empty(t, sessions.created)
}

func TestPageContextMismatch_RejectsTripOpsActionFromConfigPage(t *testing.T) {
	fake := toolsfake.New()
	seedTripWithBookings(fake, 5, 0, 10)
	sessions := &stubSessions{}
	llm := stubLLM{intent: llmclient.Intent{Action: "assign_vehicle", Confidence: 0.9, Parameters: map[string]any{"vehicle_id": int64(11)}}}
	g := buildGraph(t, fake, llm, sessions)

	out := g.Run(context.Background(), state.State{
		"text": "assign vehicle to trip 5", "user_id": "dispatcher-1", "current_page": "config", "target_entity_id": int64(5),
	})

	final := out["final_output"].(map[string]any)
	assert.Equal(t, "page_context_mismatch", final["error"])
	assert.Empty(t, sessions.created)
}

func TestAmbiguousLabel_ReturnsMultipleOptionsWithoutCreatingSession(t *testing.T) {
	fake := toolsfake.New()
	fake.SeedTrip(models.Trip{TripID: 1, DisplayName: "Path-3 - 07:30", TripDate: time.Now().Add(24 * time.Hour), ScheduledTime: time.Now().Add(24 * time.Hour), LiveStatus: models.TripScheduled})
	fake.SeedTrip(models.Trip{TripID: 2, DisplayName: "Path-3A - 07:30", TripDate: time.Now().Add(24 * time.Hour), ScheduledTime: time.Now().Add(24 * time.Hour), LiveStatus: models.TripScheduled})
	sessions := &stubSessions{}
	label := "Path-3"
	llm := stubLLM{intent: llmclient.Intent{Action: "remove_vehicle", Confidence: 0.9, TargetLabel: &label, Parameters: map[string]any{}}}
	g := buildGraph(t, fake, llm, sessions)

	out := g.Run(context.Background(), state.State{
		"text": "Remove vehicle from the Path-3 trip", "user_id": "dispatcher-1", "current_page": "trip_ops",
	})

	final := out["final_output"].(map[string]any)
	options, ok := final["options"].([]map[string]any)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(options), 2)
	assert.Empty(t, sessions.created)
}

func TestWizardEntryThenAdvance_PersistsStepShapeAcrossRequests(t *testing.T) {
	fake := toolsfake.New()
	sessions := &stubSessions{}
	llm := stubLLM{intent: llmclient.Intent{Action: "create_stop", Confidence: 0.9, Parameters: map[string]any{}}}
	g := buildGraph(t, fake, llm, sessions)

	entry := g.Run(context.Background(), state.State{
		"text": "create a new stop", "user_id": "dispatcher-1", "current_page": "config",
	})
	assert.Equal(t, true, entry["wizard_active"])
	assert.Equal(t, "create_stop", entry["wizard_type"])
	assert.Equal(t, int64(0), entry["wizard_step"])

	// Simulate the next HTTP request: the caller reloads the persisted
	// wizard_* keys as inputs alongside the new answer text.
	continuation := state.State{
		"text":               "Market Square",
		"user_id":            "dispatcher-1",
		"current_page":       "config",
		"wizard_active":      true,
		"wizard_type":        entry["wizard_type"],
		"wizard_step":        entry["wizard_step"],
		"wizard_data":        entry["wizard_data"],
		"wizard_steps_total": entry["wizard_steps_total"],
	}
	advanced := g.Run(context.Background(), continuation)
	assert.Equal(t, true, advanced["wizard_active"])
	assert.Equal(t, int64(1), advanced["wizard_step"])
	data := advanced["wizard_data"].(map[string]any)
	assert.Equal(t, "Market Square", data["name"])
}

func TestWizardCancellation_ClearsStateWithoutCompleting(t *testing.T) {
	fake := toolsfake.New()
	sessions := &stubSessions{}
	llm := stubLLM{}
	g := buildGraph(t, fake, llm, sessions)

	out := g.Run(context.Background(), state.State{
		"text": "cancel", "user_id": "dispatcher-1", "current_page": "config",
		"wizard_active": true, "wizard_type": "create_stop", "wizard_step": int64(0), "wizard_data": map[string]any{},
	})
	final := out["final_output"].(map[string]any)
	assert.Equal(t, "cancelled", final["status"])
	assert.Equal(t, false, out["wizard_active"])
}

func TestUnresolvedTarget_FailsGracefullyRatherThanExecuting(t *testing.T) {
	fake := toolsfake.New() // trip 999 deliberately not seeded
	sessions := &stubSessions{}
	llm := stubLLM{intent: llmclient.Intent{Action: "get_trip_status", Confidence: 0.9, Parameters: map[string]any{}, TargetEntityID: int64Ptr(999)}}
	g := buildGraph(t, fake, llm, sessions)

	out := g.Run(context.Background(), state.State{
		"text": "status of trip 999", "user_id": "dispatcher-1", "current_page": "trip_ops",
	})

	final, ok := out["final_output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "target_not_found", final["error"])
	assert.NotEmpty(t, final["message"])
}

func int64Ptr(v int64) *int64 { return &v }
