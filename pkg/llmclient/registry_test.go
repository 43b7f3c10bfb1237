package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAction_ExactMatch(t *testing.T) {
	assert.Equal(t, "assign_vehicle", ResolveAction("assign_vehicle"))
}

func TestResolveAction_SynonymMatch(t *testing.T) {
	assert.Equal(t, "assign_vehicle", ResolveAction("assign a vehicle"))
	assert.Equal(t, "cancel_trip", ResolveAction("Cancel"))
	assert.Equal(t, "get_trip_status", ResolveAction("status"))
}

func TestResolveAction_UnknownFallsThrough(t *testing.T) {
	assert.Equal(t, "unknown", ResolveAction("reboot the server"))
}

func TestIsSafeAction_DriverAssignmentIsSafe(t *testing.T) {
	assert.True(t, IsSafeAction("assign_driver"))
	assert.False(t, IsSafeAction("assign_vehicle"))
	assert.False(t, IsSafeAction("cancel_trip"))
}

func TestIsAlwaysConfirm(t *testing.T) {
	assert.True(t, IsAlwaysConfirm("cancel_trip"))
	assert.False(t, IsAlwaysConfirm("assign_driver"))
}

func TestIsNoTargetAction(t *testing.T) {
	assert.True(t, IsNoTargetAction("list_all_stops"))
	assert.False(t, IsNoTargetAction("assign_vehicle"))
}
