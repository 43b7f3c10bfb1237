package toolsfake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

func seedBasicTrip(f *Fake, when time.Time) models.Trip {
	return f.SeedTrip(models.Trip{TripDate: when, ScheduledTime: when, RouteID: 1, LiveStatus: models.TripScheduled, DisplayName: "Morning Express"})
}

func TestFake_AssignVehicle_AlreadyDeployedWithoutOverride(t *testing.T) {
	ctx := context.Background()
	f := New()
	when := time.Now().Add(24 * time.Hour)
	trip := seedBasicTrip(f, when)
	v1 := f.SeedVehicle(models.Vehicle{VehicleID: 1, RegistrationNumber: "AB-1", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleAvailable})
	v2 := f.SeedVehicle(models.Vehicle{VehicleID: 2, RegistrationNumber: "AB-2", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleAvailable})

	_, err := f.AssignVehicle(ctx, trip.TripID, v1.VehicleID, nil, "alice", false)
	require.NoError(t, err)

	_, err = f.AssignVehicle(ctx, trip.TripID, v2.VehicleID, nil, "alice", false)
	assert.ErrorIs(t, err, tools.ErrAlreadyDeployed)

	dep, err := f.AssignVehicle(ctx, trip.TripID, v2.VehicleID, nil, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, v2.VehicleID, *dep.VehicleID)
}

func TestFake_AssignVehicle_ConflictingWindowRejected(t *testing.T) {
	ctx := context.Background()
	f := New()
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tripA := f.SeedTrip(models.Trip{TripDate: day, ScheduledTime: day.Add(7 * time.Hour), RouteID: 1, LiveStatus: models.TripScheduled, DisplayName: "A"})
	tripB := f.SeedTrip(models.Trip{TripDate: day, ScheduledTime: day.Add(7*time.Hour + 30*time.Minute), RouteID: 1, LiveStatus: models.TripScheduled, DisplayName: "B"})
	veh := f.SeedVehicle(models.Vehicle{VehicleID: 1, RegistrationNumber: "AB-1", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleAvailable})

	_, err := f.AssignVehicle(ctx, tripA.TripID, veh.VehicleID, nil, "alice", false)
	require.NoError(t, err)

	_, err = f.AssignVehicle(ctx, tripB.TripID, veh.VehicleID, nil, "alice", false)
	assert.ErrorIs(t, err, tools.ErrVehicleUnavailable)
}

func TestFake_AssignVehicle_NonOverlappingWindowAllowed(t *testing.T) {
	ctx := context.Background()
	f := New()
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tripA := f.SeedTrip(models.Trip{TripDate: day, ScheduledTime: day.Add(7 * time.Hour), RouteID: 1, LiveStatus: models.TripScheduled, DisplayName: "A"})
	tripB := f.SeedTrip(models.Trip{TripDate: day, ScheduledTime: day.Add(9 * time.Hour), RouteID: 1, LiveStatus: models.TripScheduled, DisplayName: "B"})
	veh := f.SeedVehicle(models.Vehicle{VehicleID: 1, RegistrationNumber: "AB-1", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleAvailable})

	_, err := f.AssignVehicle(ctx, tripA.TripID, veh.VehicleID, nil, "alice", false)
	require.NoError(t, err)

	_, err = f.AssignVehicle(ctx, tripB.TripID, veh.VehicleID, nil, "alice", false)
	assert.NoError(t, err)
}

func TestFake_CancelTrip_CascadesToConfirmedBookings(t *testing.T) {
	ctx := context.Background()
	f := New()
	trip := seedBasicTrip(f, time.Now().Add(24*time.Hour))
	f.bookings[trip.TripID] = []models.Booking{
		{BookingID: 1, TripID: trip.TripID, Status: models.BookingConfirmed},
		{BookingID: 2, TripID: trip.TripID, Status: models.BookingConfirmed},
	}

	cancelled, err := f.CancelTrip(ctx, trip.TripID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.TripCancelled, cancelled.LiveStatus)

	bookings, err := f.GetBookings(ctx, trip.TripID)
	require.NoError(t, err)
	assert.Empty(t, bookings, "CONFIRMED bookings must be cancelled alongside the trip")

	_, err = f.CancelTrip(ctx, trip.TripID, "alice")
	assert.ErrorIs(t, err, tools.ErrTripCancelled)
}

func TestFake_RemoveVehicle_NoDeploymentYet(t *testing.T) {
	ctx := context.Background()
	f := New()
	trip := seedBasicTrip(f, time.Now().Add(24*time.Hour))

	_, err := f.RemoveVehicle(ctx, trip.TripID, "alice")
	assert.ErrorIs(t, err, tools.ErrNoDeployment)
}

func TestFake_UpdateTripTime_RejectsPastTimestamp(t *testing.T) {
	ctx := context.Background()
	f := New()
	trip := seedBasicTrip(f, time.Now().Add(24*time.Hour))

	_, err := f.UpdateTripTime(ctx, trip.TripID, time.Now().Add(-time.Hour), "alice")
	assert.ErrorIs(t, err, tools.ErrPastTimestamp)
}

func TestFake_IdentifyTripFromLabel_PrefixRankedBeforeContains(t *testing.T) {
	ctx := context.Background()
	f := New()
	future := time.Now().Add(24 * time.Hour)
	f.SeedTrip(models.Trip{DisplayName: "Downtown Express", TripDate: future, ScheduledTime: future, RouteID: 1, LiveStatus: models.TripScheduled})
	f.SeedTrip(models.Trip{DisplayName: "Express to Downtown", TripDate: future, ScheduledTime: future, RouteID: 1, LiveStatus: models.TripScheduled})

	results, err := f.IdentifyTripFromLabel(ctx, "Express", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Express to Downtown", results[0].DisplayName)
}

func TestFake_AuditTrail_RecordsOneEntryPerMutation(t *testing.T) {
	ctx := context.Background()
	f := New()
	trip := seedBasicTrip(f, time.Now().Add(24*time.Hour))
	veh := f.SeedVehicle(models.Vehicle{VehicleID: 1, RegistrationNumber: "AB-1", VehicleType: models.VehicleBus, Capacity: 40, Status: models.VehicleAvailable})

	_, err := f.AssignVehicle(ctx, trip.TripID, veh.VehicleID, nil, "alice", false)
	require.NoError(t, err)

	require.Len(t, f.AuditTrail, 1)
	assert.Equal(t, "assign_vehicle", f.AuditTrail[0].Action)
	assert.Equal(t, "alice", f.AuditTrail[0].UserID)
}
