package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tarsy-transit/opsagent/pkg/models"
)

// ListAvailableVehicles returns vehicles whose existing deployments do not
// overlap the target trip's window on the same trip_date (§4.2).
func (p *PG) ListAvailableVehicles(ctx context.Context, tripID int64) ([]models.Vehicle, error) {
	trip, err := scanTrip(p.pool.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("list available vehicles: %w", err)
	}
	start, end := trip.Window(DefaultAvailabilityWindow)

	rows, err := p.pool.Query(ctx, `
		SELECT vehicle_id, registration_number, vehicle_type, capacity, status
		FROM vehicles
		WHERE status != 'maintenance'
		ORDER BY vehicle_id`)
	if err != nil {
		return nil, fmt.Errorf("list available vehicles: %w", err)
	}
	defer rows.Close()

	var candidates []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		var vtype, status string
		if err := rows.Scan(&v.VehicleID, &v.RegistrationNumber, &vtype, &v.Capacity, &status); err != nil {
			return nil, fmt.Errorf("list available vehicles: scan: %w", err)
		}
		v.VehicleType = models.VehicleType(vtype)
		v.Status = models.VehicleOperationalStatus(status)
		candidates = append(candidates, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var available []models.Vehicle
	for _, v := range candidates {
		conflict, err := vehicleHasConflictStandalone(ctx, p.pool, v.VehicleID, trip.TripDate, start, end)
		if err != nil {
			return nil, err
		}
		if !conflict {
			available = append(available, v)
		}
	}
	return available, nil
}

// ListAvailableDrivers returns drivers whose existing deployments do not
// overlap the target trip's window on the same trip_date.
func (p *PG) ListAvailableDrivers(ctx context.Context, tripID int64) ([]models.Driver, error) {
	trip, err := scanTrip(p.pool.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("list available drivers: %w", err)
	}
	start, end := trip.Window(DefaultAvailabilityWindow)

	rows, err := p.pool.Query(ctx, `
		SELECT driver_id, name, status
		FROM drivers
		WHERE status != 'off_duty'
		ORDER BY driver_id`)
	if err != nil {
		return nil, fmt.Errorf("list available drivers: %w", err)
	}
	defer rows.Close()

	var candidates []models.Driver
	for rows.Next() {
		var d models.Driver
		var status string
		if err := rows.Scan(&d.DriverID, &d.Name, &status); err != nil {
			return nil, fmt.Errorf("list available drivers: scan: %w", err)
		}
		d.Status = models.DriverStatus(status)
		candidates = append(candidates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var available []models.Driver
	for _, d := range candidates {
		conflict, err := driverHasConflictStandalone(ctx, p.pool, d.DriverID, trip.TripDate, start, end)
		if err != nil {
			return nil, err
		}
		if !conflict {
			available = append(available, d)
		}
	}
	return available, nil
}
