// Package tools implements the typed database operations (C1): reads,
// mutations, search, and availability checks, each writing exactly one
// audit record per mutation within its own transaction (§4.2).
//
// Tooling is the interface nodes depend on (grounded on the teacher's
// queue.SessionExecutor seam in pkg/queue/types.go — an interface at the
// point of use, with a real pgx-backed implementation and a hand-written
// test double). pkg/toolsfake provides the double.
package tools

import (
	"context"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/models"
)

// TripStatusView is the result of GetTripStatus: trip attributes, the
// current deployment summary (if any), and the confirmed booking count.
type TripStatusView struct {
	Trip          models.Trip
	Deployment    *models.Deployment
	BookingCount  int
	VehicleCap    int // capacity of the deployed vehicle, 0 if none
}

// Tooling is the complete set of typed database operations the action
// executor (C10), consequence analyser (C7), and target resolver (C5)
// invoke. Every mutating method performs its write and its audit record in
// a single transaction; read methods take no transaction.
type Tooling interface {
	// Reads
	GetTripStatus(ctx context.Context, tripID int64) (*TripStatusView, error)
	GetBookings(ctx context.Context, tripID int64) ([]models.Booking, error)
	ListAllStops(ctx context.Context) ([]models.Stop, error)
	ListAllPaths(ctx context.Context) ([]models.Path, error)
	ListAllRoutes(ctx context.Context) ([]models.Route, error)
	GetUnassignedTrips(ctx context.Context) ([]models.TripSummary, error)

	// Search / resolution (C5)
	TripExists(ctx context.Context, tripID int64) (bool, error)
	IdentifyTripFromLabel(ctx context.Context, label string, limit int) ([]models.TripSummary, error)
	FindTripsByTime(ctx context.Context, hhmm string, date time.Time) ([]models.TripSummary, error)

	// Availability (C1, §4.2)
	ListAvailableVehicles(ctx context.Context, tripID int64) ([]models.Vehicle, error)
	ListAvailableDrivers(ctx context.Context, tripID int64) ([]models.Driver, error)

	// Mutations
	AssignVehicle(ctx context.Context, tripID, vehicleID int64, driverID *int64, userID string, override bool) (*models.Deployment, error)
	AssignDriver(ctx context.Context, tripID, driverID int64, userID string) (*models.Deployment, error)
	RemoveVehicle(ctx context.Context, tripID int64, userID string) (*models.Deployment, error)
	CancelTrip(ctx context.Context, tripID int64, userID string) (*models.Trip, error)
	UpdateTripTime(ctx context.Context, tripID int64, newTime time.Time, userID string) (*models.Trip, error)
	CreateStop(ctx context.Context, name string, latitude, longitude float64, landmark string, userID string) (*models.Stop, error)
	CreatePath(ctx context.Context, name string, stopIDs []int64, userID string) (*models.Path, error)
	CreateRoute(ctx context.Context, pathID int64, direction models.Direction, shiftTime time.Time, userID string) (*models.Route, error)
	CreateTrip(ctx context.Context, routeID int64, tripDate time.Time, scheduledTime time.Time, displayName string, userID string) (*models.Trip, error)
}

// DefaultAvailabilityWindow is used when a candidate's existing deployment
// carries no explicit end time (§4.2).
const DefaultAvailabilityWindow = 60 * time.Minute

// DefaultVehicleCapacity is used by the consequence analyser when a trip
// has no deployed vehicle to read capacity from (§9 open question:
// capacity lookup is a single configured default, never duplicated logic).
const DefaultVehicleCapacity = 40

// Overlaps reports whether two time windows on the same date intersect,
// using the mandated true-interval-overlap semantics: NOT (a ends at or
// before b starts, OR a starts at or after b ends). Proximity heuristics
// (e.g. "within 90 minutes") are explicitly prohibited by the specification
// because they produce false negatives — this is the one true definition,
// used by both ListAvailableVehicles and ListAvailableDrivers.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || aEnd.Equal(bStart) || aStart.After(bEnd) || aStart.Equal(bEnd))
}
