package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/models"
)

func scanTrip(row pgx.Row) (models.Trip, error) {
	var t models.Trip
	var status string
	err := row.Scan(&t.TripID, &t.DisplayName, &t.TripDate, &t.ScheduledTime, &t.RouteID, &status)
	if err != nil {
		return models.Trip{}, err
	}
	t.LiveStatus = models.TripStatus(status)
	return t, nil
}

// GetTripStatus returns trip attributes, the current deployment summary
// (if any), and the confirmed booking count.
func (p *PG) GetTripStatus(ctx context.Context, tripID int64) (*TripStatusView, error) {
	trip, err := scanTrip(p.pool.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip status: %w", err)
	}

	view := &TripStatusView{Trip: trip}

	var dep models.Deployment
	err = p.pool.QueryRow(ctx,
		`SELECT deployment_id, trip_id, vehicle_id, driver_id, deployed_at
		 FROM deployments WHERE trip_id = $1`, tripID,
	).Scan(&dep.DeploymentID, &dep.TripID, &dep.VehicleID, &dep.DriverID, &dep.DeployedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no deployment yet, leave view.Deployment nil
	case err != nil:
		return nil, fmt.Errorf("get trip status: deployment lookup: %w", err)
	default:
		view.Deployment = &dep
		if dep.VehicleID != nil {
			var cap int
			if err := p.pool.QueryRow(ctx, `SELECT capacity FROM vehicles WHERE vehicle_id = $1`, *dep.VehicleID).Scan(&cap); err == nil {
				view.VehicleCap = cap
			}
		}
	}

	err = p.pool.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE trip_id = $1 AND status = 'CONFIRMED'`, tripID,
	).Scan(&view.BookingCount)
	if err != nil {
		return nil, fmt.Errorf("get trip status: booking count: %w", err)
	}

	return view, nil
}

// GetBookings returns the list of CONFIRMED bookings for a trip.
func (p *PG) GetBookings(ctx context.Context, tripID int64) ([]models.Booking, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT booking_id, trip_id, status FROM bookings WHERE trip_id = $1 AND status = 'CONFIRMED' ORDER BY booking_id`,
		tripID)
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		var status string
		if err := rows.Scan(&b.BookingID, &b.TripID, &status); err != nil {
			return nil, fmt.Errorf("get bookings: scan: %w", err)
		}
		b.Status = models.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

// TripExists reports whether a trip_id is known.
func (p *PG) TripExists(ctx context.Context, tripID int64) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM trips WHERE trip_id = $1)`, tripID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("trip exists: %w", err)
	}
	return exists, nil
}

// IdentifyTripFromLabel performs an ordered prefix/contains search over
// active trips (trip_date >= today), returning at most limit candidates
// with prefix matches ranked ahead of mere substring matches.
func (p *PG) IdentifyTripFromLabel(ctx context.Context, label string, limit int) ([]models.TripSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + label + "%"
	prefixPattern := label + "%"
	rows, err := p.pool.Query(ctx, `
		SELECT trip_id, display_name, trip_date
		FROM trips
		WHERE trip_date >= CURRENT_DATE
		  AND live_status != 'CANCELLED'
		  AND display_name ILIKE $1
		ORDER BY (CASE WHEN display_name ILIKE $2 THEN 0 ELSE 1 END), trip_date, trip_id
		LIMIT $3`,
		pattern, prefixPattern, limit)
	if err != nil {
		return nil, fmt.Errorf("identify trip from label: %w", err)
	}
	defer rows.Close()

	var out []models.TripSummary
	for rows.Next() {
		var s models.TripSummary
		if err := rows.Scan(&s.TripID, &s.DisplayName, &s.TripDate); err != nil {
			return nil, fmt.Errorf("identify trip from label: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindTripsByTime returns trips whose scheduled time-of-day matches hhmm
// on the given date.
func (p *PG) FindTripsByTime(ctx context.Context, hhmm string, date time.Time) ([]models.TripSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT trip_id, display_name, trip_date
		FROM trips
		WHERE trip_date = $1 AND to_char(scheduled_time, 'HH24:MI') = $2
		ORDER BY trip_id`,
		date, hhmm)
	if err != nil {
		return nil, fmt.Errorf("find trips by time: %w", err)
	}
	defer rows.Close()

	var out []models.TripSummary
	for rows.Next() {
		var s models.TripSummary
		if err := rows.Scan(&s.TripID, &s.DisplayName, &s.TripDate); err != nil {
			return nil, fmt.Errorf("find trips by time: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetUnassignedTrips returns active, upcoming trips with no vehicle bound.
func (p *PG) GetUnassignedTrips(ctx context.Context) ([]models.TripSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT t.trip_id, t.display_name, t.trip_date
		FROM trips t
		LEFT JOIN deployments d ON d.trip_id = t.trip_id
		WHERE t.trip_date >= CURRENT_DATE
		  AND t.live_status != 'CANCELLED'
		  AND (d.deployment_id IS NULL OR d.vehicle_id IS NULL)
		ORDER BY t.trip_date, t.scheduled_time`)
	if err != nil {
		return nil, fmt.Errorf("get unassigned trips: %w", err)
	}
	defer rows.Close()

	var out []models.TripSummary
	for rows.Next() {
		var s models.TripSummary
		if err := rows.Scan(&s.TripID, &s.DisplayName, &s.TripDate); err != nil {
			return nil, fmt.Errorf("get unassigned trips: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CancelTrip transitions the trip to CANCELLED and cancels every CONFIRMED
// booking in the same transaction, writing one audit record for the trip
// mutation.
func (p *PG) CancelTrip(ctx context.Context, tripID int64, userID string) (*models.Trip, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cancel trip: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	before, err := scanTrip(tx.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1 FOR UPDATE`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cancel trip: lookup: %w", err)
	}
	if before.LiveStatus == models.TripCancelled {
		return nil, ErrTripCancelled
	}

	after := before
	after.LiveStatus = models.TripCancelled
	if _, err := tx.Exec(ctx, `UPDATE trips SET live_status = 'CANCELLED' WHERE trip_id = $1`, tripID); err != nil {
		return nil, fmt.Errorf("cancel trip: update: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET status = 'CANCELLED' WHERE trip_id = $1 AND status = 'CONFIRMED'`, tripID); err != nil {
		return nil, fmt.Errorf("cancel trip: cancel bookings: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "cancel_trip", "trip", tripID, before, after); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("cancel trip: commit: %w", err)
	}
	return &after, nil
}

// UpdateTripTime rejects past timestamps, writes audit, and returns the
// updated trip.
func (p *PG) UpdateTripTime(ctx context.Context, tripID int64, newTime time.Time, userID string) (*models.Trip, error) {
	if newTime.Before(time.Now()) {
		return nil, ErrPastTimestamp
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("update trip time: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	before, err := scanTrip(tx.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1 FOR UPDATE`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update trip time: lookup: %w", err)
	}

	after := before
	after.ScheduledTime = newTime
	if _, err := tx.Exec(ctx, `UPDATE trips SET scheduled_time = $1 WHERE trip_id = $2`, newTime, tripID); err != nil {
		return nil, fmt.Errorf("update trip time: update: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "update_trip_time", "trip", tripID, before, after); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("update trip time: commit: %w", err)
	}
	return &after, nil
}

// CreateTrip inserts a new scheduled trip bound to an existing route.
func (p *PG) CreateTrip(ctx context.Context, routeID int64, tripDate, scheduledTime time.Time, displayName, userID string) (*models.Trip, error) {
	if displayName == "" {
		return nil, ErrInvalidInput
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create trip: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM routes WHERE route_id = $1)`, routeID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("create trip: route lookup: %w", err)
	}
	if !exists {
		return nil, ErrRouteNotFound
	}

	trip := models.Trip{
		DisplayName:   displayName,
		TripDate:      tripDate,
		ScheduledTime: scheduledTime,
		RouteID:       routeID,
		LiveStatus:    models.TripScheduled,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO trips (display_name, trip_date, scheduled_time, route_id, live_status)
		VALUES ($1, $2, $3, $4, $5) RETURNING trip_id`,
		trip.DisplayName, trip.TripDate, trip.ScheduledTime, trip.RouteID, string(trip.LiveStatus),
	).Scan(&trip.TripID)
	if err != nil {
		return nil, fmt.Errorf("create trip: insert: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "create_trip", "trip", trip.TripID, nil, trip); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create trip: commit: %w", err)
	}
	return &trip, nil
}
