package wizard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/toolsfake"
	"github.com/tarsy-transit/opsagent/pkg/wizard"
)

func TestRegistry_AllFourBuiltinsRegistered(t *testing.T) {
	for _, wizardType := range []string{"create_trip_from_scratch", "create_route", "create_path", "create_stop"} {
		def := wizard.Lookup(wizardType)
		require.NotNilf(t, def, "expected %q to be registered", wizardType)
		assert.NotEmpty(t, def.Steps)
	}
}

func TestRegistry_StepCountsMatchSpec(t *testing.T) {
	assert.Len(t, wizard.Lookup("create_trip_from_scratch").Steps, 7)
	assert.Len(t, wizard.Lookup("create_route").Steps, 4)
	assert.Len(t, wizard.Lookup("create_path").Steps, 3)
	assert.Len(t, wizard.Lookup("create_stop").Steps, 4)
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, wizard.IsCancellation("cancel"))
	assert.True(t, wizard.IsCancellation("stop"))
	assert.False(t, wizard.IsCancellation("cancel trip"))
	assert.False(t, wizard.IsCancellation("yes"))
}

func TestCreateStopWizard_ValidatesAndCompletes(t *testing.T) {
	def := wizard.Lookup("create_stop")
	data := map[string]any{}

	name, err := def.Steps[0].Validate("Market Square", data)
	require.NoError(t, err)
	data["name"] = name

	lat, err := def.Steps[1].Validate("12.97", data)
	require.NoError(t, err)
	data["latitude"] = lat

	long, err := def.Steps[2].Validate("77.59", data)
	require.NoError(t, err)
	data["longitude"] = long

	landmark, err := def.Steps[3].Validate("none", data)
	require.NoError(t, err)
	data["landmark"] = landmark

	fake := toolsfake.New()
	result, err := def.Complete(context.Background(), fake, data, "dispatcher-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, result["stop_id"])
	assert.Equal(t, "Market Square", result["name"])
	assert.Len(t, fake.AuditTrail, 1)
}

func TestCreateStopWizard_RejectsBadLatitude(t *testing.T) {
	def := wizard.Lookup("create_stop")
	_, err := def.Steps[1].Validate("not-a-number", map[string]any{})
	assert.Error(t, err)
}

func TestCreatePathWizard_DeclinedConfirmationSkipsCreation(t *testing.T) {
	def := wizard.Lookup("create_path")
	fake := toolsfake.New()
	_, err := fake.CreateStop(context.Background(), "Stop One", 0, 0, "", "dispatcher-1")
	require.NoError(t, err)
	_, err = fake.CreateStop(context.Background(), "Stop Two", 0, 0, "", "dispatcher-1")
	require.NoError(t, err)

	data := map[string]any{}
	name, err := def.Steps[0].Validate("Downtown Loop", data)
	require.NoError(t, err)
	data["name"] = name

	ids, err := def.Steps[1].Validate("1,2", data)
	require.NoError(t, err)
	data["stop_ids"] = ids

	confirm, err := def.Steps[2].Validate("no", data)
	require.NoError(t, err)
	data["confirm"] = confirm

	result, err := def.Complete(context.Background(), fake, data, "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, false, result["created"])
}

func TestCreateRouteWizard_RejectsInvalidDirection(t *testing.T) {
	def := wizard.Lookup("create_route")
	_, err := def.Steps[1].Validate("sideways", map[string]any{})
	assert.Error(t, err)
}

func TestCreateTripWizard_CompletesWithoutVehicleOrDriver(t *testing.T) {
	def := wizard.Lookup("create_trip_from_scratch")
	fake := toolsfake.New()
	_, err := fake.CreateStop(context.Background(), "Depot", 0, 0, "", "dispatcher-1")
	require.NoError(t, err)
	path, err := fake.CreatePath(context.Background(), "Loop", []int64{1}, "dispatcher-1")
	require.NoError(t, err)
	route, err := fake.CreateRoute(context.Background(), path.PathID, models.DirectionUp, time.Now(), "dispatcher-1")
	require.NoError(t, err)

	data := map[string]any{
		"route_id":       route.RouteID,
		"trip_date":      "2099-01-01",
		"scheduled_time": "07:00",
		"display_name":   "Morning Express",
		"vehicle_id":     int64(0),
		"driver_id":      int64(0),
		"confirm":        true,
	}
	result, err := def.Complete(context.Background(), fake, data, "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, true, result["created"])
	assert.Equal(t, "Morning Express", result["display_name"])
}
