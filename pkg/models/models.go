// Package models defines the domain entities the core reads and writes
// through the tool layer (pkg/tools). Only the attributes the core depends
// on are modelled here — the storage schema may carry more (§3.3).
package models

import "time"

// TripStatus is the live status of a scheduled Trip.
type TripStatus string

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Trip is a scheduled instance of a route on a date.
type Trip struct {
	TripID        int64
	DisplayName   string
	TripDate      time.Time
	ScheduledTime time.Time
	RouteID       int64
	LiveStatus    TripStatus
}

// Window returns the trip's [start, end] time window for overlap checks:
// end is the scheduled start plus the caller-supplied defaultWindow, since
// Trip carries only a scheduled start time, not an explicit end.
func (t Trip) Window(defaultWindow time.Duration) (start, end time.Time) {
	start = t.ScheduledTime
	end = start.Add(defaultWindow)
	return
}

// TripSummary is the compact shape returned by label/time search (C5, C1
// identify_trip_from_label / search-by-time).
type TripSummary struct {
	TripID      int64
	DisplayName string
	TripDate    time.Time
}

// BookingStatus is the lifecycle state of a Booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is a passenger reservation against a Trip.
type Booking struct {
	BookingID int64
	TripID    int64
	Status    BookingStatus
}

// VehicleType enumerates the canonical vehicle categories.
type VehicleType string

const (
	VehicleBus VehicleType = "Bus"
	VehicleCab VehicleType = "Cab"
)

// VehicleOperationalStatus is the current availability state of a Vehicle.
type VehicleOperationalStatus string

const (
	VehicleAvailable  VehicleOperationalStatus = "available"
	VehicleDeployed   VehicleOperationalStatus = "deployed"
	VehicleMaintained VehicleOperationalStatus = "maintenance"
)

// Vehicle is a physical vehicle available for deployment.
type Vehicle struct {
	VehicleID          int64
	RegistrationNumber string
	VehicleType        VehicleType
	Capacity           int
	Status             VehicleOperationalStatus
}

// DriverStatus is the current availability state of a Driver.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTrip    DriverStatus = "on_trip"
	DriverOffDuty   DriverStatus = "off_duty"
)

// Driver is a person who may be bound to a Trip's Deployment.
type Driver struct {
	DriverID int64
	Name     string
	Status   DriverStatus
}

// Deployment binds a vehicle and/or a driver to a trip. At most one
// deployment exists per trip (enforced by the tool layer inside each
// mutation's transaction; the deployments table has no unique constraint
// on trip_id).
type Deployment struct {
	DeploymentID int64
	TripID       int64
	VehicleID    *int64
	DriverID     *int64
	DeployedAt   time.Time
}

// Direction is the travel direction of a Route along its Path.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Stop is a named location that may appear on one or more Paths.
type Stop struct {
	StopID    int64
	Name      string
	Latitude  float64
	Longitude float64
	Landmark  string
}

// Path is an ordered sequence of Stops (via PathStop membership rows).
type Path struct {
	PathID int64
	Name   string
}

// PathStop is one ordered membership row linking a Path to a Stop.
type PathStop struct {
	PathID   int64
	StopID   int64
	Sequence int
}

// Route references a Path and carries a direction and shift time.
type Route struct {
	RouteID   int64
	PathID    int64
	Direction Direction
	ShiftTime time.Time
}

// AuditLog is an append-only record of every mutation the core performs.
type AuditLog struct {
	AuditID    int64
	UserID     string
	Action     string
	EntityType string
	EntityID   int64
	Before     map[string]any
	After      map[string]any
	Timestamp  time.Time
}
