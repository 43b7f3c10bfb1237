// Package toolsfake provides an in-memory stand-in for tools.Tooling,
// grounded on the teacher's queue.StubExecutor (pkg/queue/executor_stub.go):
// a placeholder implementation of an interface defined at its point of use,
// letting callers be exercised without a live database. Unlike the
// teacher's stub (which always returns one fixed result), this fake keeps
// real in-memory state so node-level tests can assert on mutations.
package toolsfake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/models"
	"github.com/tarsy-transit/opsagent/pkg/tools"
)

// Fake is a goroutine-safe, in-memory tools.Tooling. Zero value is not
// ready for use; construct with New.
type Fake struct {
	mu sync.Mutex

	trips       map[int64]models.Trip
	deployments map[int64]models.Deployment // keyed by trip_id
	bookings    map[int64][]models.Booking  // keyed by trip_id
	vehicles    map[int64]models.Vehicle
	drivers     map[int64]models.Driver
	stops       map[int64]models.Stop
	paths       map[int64]models.Path
	pathStops   map[int64][]models.PathStop // keyed by path_id
	routes      map[int64]models.Route

	nextTripID       int64
	nextDeploymentID int64
	nextBookingID    int64
	nextStopID       int64
	nextPathID       int64
	nextRouteID      int64

	// AuditTrail records every mutating call in order, for assertions.
	AuditTrail []AuditEntry
}

// AuditEntry mirrors one audit.Write call without touching a database.
type AuditEntry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   int64
}

// New constructs an empty fake.
func New() *Fake {
	return &Fake{
		trips:       map[int64]models.Trip{},
		deployments: map[int64]models.Deployment{},
		bookings:    map[int64][]models.Booking{},
		vehicles:    map[int64]models.Vehicle{},
		drivers:     map[int64]models.Driver{},
		stops:       map[int64]models.Stop{},
		paths:       map[int64]models.Path{},
		pathStops:   map[int64][]models.PathStop{},
		routes:      map[int64]models.Route{},
	}
}

var _ tools.Tooling = (*Fake)(nil)

func (f *Fake) record(userID, action, entityType string, entityID int64) {
	f.AuditTrail = append(f.AuditTrail, AuditEntry{UserID: userID, Action: action, EntityType: entityType, EntityID: entityID})
}

// SeedTrip inserts a trip directly, bypassing CreateTrip, for test setup.
func (f *Fake) SeedTrip(t models.Trip) models.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.TripID == 0 {
		f.nextTripID++
		t.TripID = f.nextTripID
	} else if t.TripID > f.nextTripID {
		f.nextTripID = t.TripID
	}
	f.trips[t.TripID] = t
	return t
}

// SeedVehicle inserts a vehicle directly.
func (f *Fake) SeedVehicle(v models.Vehicle) models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vehicles[v.VehicleID] = v
	return v
}

// SeedDriver inserts a driver directly.
func (f *Fake) SeedDriver(d models.Driver) models.Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drivers[d.DriverID] = d
	return d
}

// SeedDeployment inserts a deployment directly.
func (f *Fake) SeedDeployment(d models.Deployment) models.Deployment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deployments[d.TripID] = d
	return d
}

func (f *Fake) GetTripStatus(ctx context.Context, tripID int64) (*tools.TripStatusView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	view := &tools.TripStatusView{Trip: trip}
	if dep, ok := f.deployments[tripID]; ok {
		d := dep
		view.Deployment = &d
		if d.VehicleID != nil {
			if v, ok := f.vehicles[*d.VehicleID]; ok {
				view.VehicleCap = v.Capacity
			}
		}
	}
	for _, b := range f.bookings[tripID] {
		if b.Status == models.BookingConfirmed {
			view.BookingCount++
		}
	}
	return view, nil
}

func (f *Fake) GetBookings(ctx context.Context, tripID int64) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings[tripID] {
		if b.Status == models.BookingConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *Fake) ListAllStops(ctx context.Context) ([]models.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Stop
	for _, s := range f.stops {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StopID < out[j].StopID })
	return out, nil
}

func (f *Fake) ListAllPaths(ctx context.Context) ([]models.Path, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Path
	for _, p := range f.paths {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PathID < out[j].PathID })
	return out, nil
}

func (f *Fake) ListAllRoutes(ctx context.Context) ([]models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Route
	for _, r := range f.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RouteID < out[j].RouteID })
	return out, nil
}

func (f *Fake) GetUnassignedTrips(ctx context.Context) ([]models.TripSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TripSummary
	for _, t := range f.trips {
		if t.LiveStatus == models.TripCancelled {
			continue
		}
		dep, hasDep := f.deployments[t.TripID]
		if hasDep && dep.VehicleID != nil {
			continue
		}
		out = append(out, models.TripSummary{TripID: t.TripID, DisplayName: t.DisplayName, TripDate: t.TripDate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TripID < out[j].TripID })
	return out, nil
}

func (f *Fake) TripExists(ctx context.Context, tripID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.trips[tripID]
	return ok, nil
}

func (f *Fake) IdentifyTripFromLabel(ctx context.Context, label string, limit int) ([]models.TripSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	lower := strings.ToLower(label)

	var prefix, contains []models.TripSummary
	for _, t := range f.trips {
		if t.LiveStatus == models.TripCancelled {
			continue
		}
		name := strings.ToLower(t.DisplayName)
		switch {
		case strings.HasPrefix(name, lower):
			prefix = append(prefix, models.TripSummary{TripID: t.TripID, DisplayName: t.DisplayName, TripDate: t.TripDate})
		case strings.Contains(name, lower):
			contains = append(contains, models.TripSummary{TripID: t.TripID, DisplayName: t.DisplayName, TripDate: t.TripDate})
		}
	}
	sort.Slice(prefix, func(i, j int) bool { return prefix[i].TripID < prefix[j].TripID })
	sort.Slice(contains, func(i, j int) bool { return contains[i].TripID < contains[j].TripID })
	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) FindTripsByTime(ctx context.Context, hhmm string, date time.Time) ([]models.TripSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TripSummary
	for _, t := range f.trips {
		if t.TripDate.Format("2006-01-02") == date.Format("2006-01-02") && t.ScheduledTime.Format("15:04") == hhmm {
			out = append(out, models.TripSummary{TripID: t.TripID, DisplayName: t.DisplayName, TripDate: t.TripDate})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TripID < out[j].TripID })
	return out, nil
}

func (f *Fake) vehicleConflict(vehicleID int64, tripDate, start, end time.Time, excludeTripID int64) bool {
	for tripID, dep := range f.deployments {
		if tripID == excludeTripID || dep.VehicleID == nil || *dep.VehicleID != vehicleID {
			continue
		}
		other, ok := f.trips[tripID]
		if !ok || other.TripDate.Format("2006-01-02") != tripDate.Format("2006-01-02") || other.LiveStatus == models.TripCancelled {
			continue
		}
		otherStart, otherEnd := other.Window(tools.DefaultAvailabilityWindow)
		if tools.Overlaps(start, end, otherStart, otherEnd) {
			return true
		}
	}
	return false
}

func (f *Fake) driverConflict(driverID int64, tripDate, start, end time.Time, excludeTripID int64) bool {
	for tripID, dep := range f.deployments {
		if tripID == excludeTripID || dep.DriverID == nil || *dep.DriverID != driverID {
			continue
		}
		other, ok := f.trips[tripID]
		if !ok || other.TripDate.Format("2006-01-02") != tripDate.Format("2006-01-02") || other.LiveStatus == models.TripCancelled {
			continue
		}
		otherStart, otherEnd := other.Window(tools.DefaultAvailabilityWindow)
		if tools.Overlaps(start, end, otherStart, otherEnd) {
			return true
		}
	}
	return false
}

func (f *Fake) ListAvailableVehicles(ctx context.Context, tripID int64) ([]models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	start, end := trip.Window(tools.DefaultAvailabilityWindow)

	var out []models.Vehicle
	for _, v := range f.vehicles {
		if v.Status == models.VehicleMaintained {
			continue
		}
		if !f.vehicleConflict(v.VehicleID, trip.TripDate, start, end, tripID) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out, nil
}

func (f *Fake) ListAvailableDrivers(ctx context.Context, tripID int64) ([]models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	start, end := trip.Window(tools.DefaultAvailabilityWindow)

	var out []models.Driver
	for _, d := range f.drivers {
		if d.Status == models.DriverOffDuty {
			continue
		}
		if !f.driverConflict(d.DriverID, trip.TripDate, start, end, tripID) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (f *Fake) AssignVehicle(ctx context.Context, tripID, vehicleID int64, driverID *int64, userID string, override bool) (*models.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	if _, ok := f.vehicles[vehicleID]; !ok {
		return nil, tools.ErrVehicleNotFound
	}

	dep, exists := f.deployments[tripID]
	if !exists {
		f.nextDeploymentID++
		dep = models.Deployment{DeploymentID: f.nextDeploymentID, TripID: tripID, DeployedAt: time.Now()}
	}
	if dep.VehicleID != nil && !override {
		return nil, tools.ErrAlreadyDeployed
	}

	start, end := trip.Window(tools.DefaultAvailabilityWindow)
	if f.vehicleConflict(vehicleID, trip.TripDate, start, end, tripID) {
		return nil, tools.ErrVehicleUnavailable
	}

	dep.VehicleID = &vehicleID
	if driverID != nil {
		dep.DriverID = driverID
	}
	f.deployments[tripID] = dep
	f.record(userID, "assign_vehicle", "deployment", dep.DeploymentID)
	result := dep
	return &result, nil
}

func (f *Fake) AssignDriver(ctx context.Context, tripID, driverID int64, userID string) (*models.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	if _, ok := f.drivers[driverID]; !ok {
		return nil, tools.ErrDriverNotFound
	}

	dep, exists := f.deployments[tripID]
	if !exists {
		f.nextDeploymentID++
		dep = models.Deployment{DeploymentID: f.nextDeploymentID, TripID: tripID, DeployedAt: time.Now()}
	}

	start, end := trip.Window(tools.DefaultAvailabilityWindow)
	if f.driverConflict(driverID, trip.TripDate, start, end, tripID) {
		return nil, tools.ErrDriverUnavailable
	}

	dep.DriverID = &driverID
	f.deployments[tripID] = dep
	f.record(userID, "assign_driver", "deployment", dep.DeploymentID)
	result := dep
	return &result, nil
}

func (f *Fake) RemoveVehicle(ctx context.Context, tripID int64, userID string) (*models.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dep, exists := f.deployments[tripID]
	if !exists {
		return nil, tools.ErrNoDeployment
	}
	dep.VehicleID = nil
	dep.DriverID = nil
	f.deployments[tripID] = dep
	f.record(userID, "remove_vehicle", "deployment", dep.DeploymentID)
	result := dep
	return &result, nil
}

func (f *Fake) CancelTrip(ctx context.Context, tripID int64, userID string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	if trip.LiveStatus == models.TripCancelled {
		return nil, tools.ErrTripCancelled
	}
	trip.LiveStatus = models.TripCancelled
	f.trips[tripID] = trip

	bookings := f.bookings[tripID]
	for i := range bookings {
		if bookings[i].Status == models.BookingConfirmed {
			bookings[i].Status = models.BookingCancelled
		}
	}
	f.bookings[tripID] = bookings

	f.record(userID, "cancel_trip", "trip", tripID)
	result := trip
	return &result, nil
}

func (f *Fake) UpdateTripTime(ctx context.Context, tripID int64, newTime time.Time, userID string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if newTime.Before(time.Now()) {
		return nil, tools.ErrPastTimestamp
	}
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, tools.ErrTripNotFound
	}
	trip.ScheduledTime = newTime
	f.trips[tripID] = trip
	f.record(userID, "update_trip_time", "trip", tripID)
	result := trip
	return &result, nil
}

func (f *Fake) CreateStop(ctx context.Context, name string, latitude, longitude float64, landmark string, userID string) (*models.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "" {
		return nil, tools.ErrInvalidInput
	}
	f.nextStopID++
	stop := models.Stop{StopID: f.nextStopID, Name: name, Latitude: latitude, Longitude: longitude, Landmark: landmark}
	f.stops[stop.StopID] = stop
	f.record(userID, "create_stop", "stop", stop.StopID)
	return &stop, nil
}

func (f *Fake) CreatePath(ctx context.Context, name string, stopIDs []int64, userID string) (*models.Path, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "" || len(stopIDs) == 0 {
		return nil, tools.ErrInvalidInput
	}
	for _, id := range stopIDs {
		if _, ok := f.stops[id]; !ok {
			return nil, tools.ErrStopNotFound
		}
	}
	f.nextPathID++
	path := models.Path{PathID: f.nextPathID, Name: name}
	f.paths[path.PathID] = path
	for i, id := range stopIDs {
		f.pathStops[path.PathID] = append(f.pathStops[path.PathID], models.PathStop{PathID: path.PathID, StopID: id, Sequence: i})
	}
	f.record(userID, "create_path", "path", path.PathID)
	return &path, nil
}

func (f *Fake) CreateRoute(ctx context.Context, pathID int64, direction models.Direction, shiftTime time.Time, userID string) (*models.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	canonical := models.Direction(strings.ToLower(string(direction)))
	if canonical != models.DirectionUp && canonical != models.DirectionDown {
		return nil, tools.ErrInvalidInput
	}
	if _, ok := f.paths[pathID]; !ok {
		return nil, tools.ErrPathNotFound
	}
	f.nextRouteID++
	route := models.Route{RouteID: f.nextRouteID, PathID: pathID, Direction: canonical, ShiftTime: shiftTime}
	f.routes[route.RouteID] = route
	f.record(userID, "create_route", "route", route.RouteID)
	return &route, nil
}

func (f *Fake) CreateTrip(ctx context.Context, routeID int64, tripDate, scheduledTime time.Time, displayName, userID string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if displayName == "" {
		return nil, tools.ErrInvalidInput
	}
	if _, ok := f.routes[routeID]; !ok {
		return nil, tools.ErrRouteNotFound
	}
	f.nextTripID++
	trip := models.Trip{
		TripID:        f.nextTripID,
		DisplayName:   displayName,
		TripDate:      tripDate,
		ScheduledTime: scheduledTime,
		RouteID:       routeID,
		LiveStatus:    models.TripScheduled,
	}
	f.trips[trip.TripID] = trip
	f.record(userID, "create_trip", "trip", trip.TripID)
	return &trip, nil
}
