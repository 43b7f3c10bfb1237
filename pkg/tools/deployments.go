package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/models"
)

// querier is satisfied by both pgx.Tx and *pgxpool.Pool, letting the
// overlap-conflict helpers run either inside a mutation's transaction or
// standalone against the pool for read-only availability listing.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func scanDeployment(row pgx.Row) (models.Deployment, error) {
	var d models.Deployment
	err := row.Scan(&d.DeploymentID, &d.TripID, &d.VehicleID, &d.DriverID, &d.DeployedAt)
	return d, err
}

// getOrCreateDeployment locks the trip's deployment row for update within
// the caller's transaction, inserting an empty row if none exists yet.
// §4.2: "Locks the trip's deployment row for update within the
// transaction."
func getOrCreateDeployment(ctx context.Context, tx pgx.Tx, tripID int64) (models.Deployment, error) {
	// Lock the trip row first: when no deployment row exists yet, the
	// FOR UPDATE below locks nothing, so concurrent callers could each
	// insert one.
	if _, err := tx.Exec(ctx, `SELECT 1 FROM trips WHERE trip_id = $1 FOR UPDATE`, tripID); err != nil {
		return models.Deployment{}, fmt.Errorf("lock trip row: %w", err)
	}
	dep, err := scanDeployment(tx.QueryRow(ctx,
		`SELECT deployment_id, trip_id, vehicle_id, driver_id, deployed_at
		 FROM deployments WHERE trip_id = $1 FOR UPDATE`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO deployments (trip_id) VALUES ($1)
			 RETURNING deployment_id, trip_id, vehicle_id, driver_id, deployed_at`, tripID,
		).Scan(&dep.DeploymentID, &dep.TripID, &dep.VehicleID, &dep.DriverID, &dep.DeployedAt)
		if err != nil {
			return models.Deployment{}, fmt.Errorf("create deployment row: %w", err)
		}
		return dep, nil
	}
	if err != nil {
		return models.Deployment{}, fmt.Errorf("lock deployment row: %w", err)
	}
	return dep, nil
}

func tripWindow(ctx context.Context, tx pgx.Tx, tripID int64) (trip models.Trip, start, end time.Time, err error) {
	trip, err = scanTrip(tx.QueryRow(ctx,
		`SELECT trip_id, display_name, trip_date, scheduled_time, route_id, live_status
		 FROM trips WHERE trip_id = $1`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrTripNotFound
		return
	}
	if err != nil {
		err = fmt.Errorf("trip window: %w", err)
		return
	}
	start, end = trip.Window(DefaultAvailabilityWindow)
	return
}

// vehicleHasConflict reports whether vehicleID has another active
// deployment on tripDate whose window overlaps [start, end], excluding the
// deployment identified by excludeDeploymentID (the one being updated).
func vehicleHasConflict(ctx context.Context, q querier, vehicleID int64, tripDate, start, end time.Time, excludeDeploymentID int64) (bool, error) {
	rows, err := q.Query(ctx, `
		SELECT t.scheduled_time
		FROM deployments d
		JOIN trips t ON t.trip_id = d.trip_id
		WHERE d.vehicle_id = $1 AND d.deployment_id != $2
		  AND t.trip_date = $3 AND t.live_status != 'CANCELLED'`,
		vehicleID, excludeDeploymentID, tripDate)
	if err != nil {
		return false, fmt.Errorf("vehicle conflict scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scheduled time.Time
		if err := rows.Scan(&scheduled); err != nil {
			return false, fmt.Errorf("vehicle conflict scan: %w", err)
		}
		otherEnd := scheduled.Add(DefaultAvailabilityWindow)
		if Overlaps(start, end, scheduled, otherEnd) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func driverHasConflict(ctx context.Context, q querier, driverID int64, tripDate, start, end time.Time, excludeDeploymentID int64) (bool, error) {
	rows, err := q.Query(ctx, `
		SELECT t.scheduled_time
		FROM deployments d
		JOIN trips t ON t.trip_id = d.trip_id
		WHERE d.driver_id = $1 AND d.deployment_id != $2
		  AND t.trip_date = $3 AND t.live_status != 'CANCELLED'`,
		driverID, excludeDeploymentID, tripDate)
	if err != nil {
		return false, fmt.Errorf("driver conflict scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scheduled time.Time
		if err := rows.Scan(&scheduled); err != nil {
			return false, fmt.Errorf("driver conflict scan: %w", err)
		}
		otherEnd := scheduled.Add(DefaultAvailabilityWindow)
		if Overlaps(start, end, scheduled, otherEnd) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// vehicleHasConflictStandalone is vehicleHasConflict run outside any
// mutation's transaction, for read-only availability listing where there
// is no deployment row being updated to exclude.
func vehicleHasConflictStandalone(ctx context.Context, q querier, vehicleID int64, tripDate, start, end time.Time) (bool, error) {
	return vehicleHasConflict(ctx, q, vehicleID, tripDate, start, end, 0)
}

func driverHasConflictStandalone(ctx context.Context, q querier, driverID int64, tripDate, start, end time.Time) (bool, error) {
	return driverHasConflict(ctx, q, driverID, tripDate, start, end, 0)
}

// AssignVehicle binds a vehicle (and optionally a driver) to a trip's
// deployment. Fails with ErrAlreadyDeployed if a vehicle is already bound
// and override is false; fails with ErrVehicleUnavailable on a conflicting
// overlapping deployment.
func (p *PG) AssignVehicle(ctx context.Context, tripID, vehicleID int64, driverID *int64, userID string, override bool) (*models.Deployment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign vehicle: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	trip, start, end, err := tripWindow(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}

	var vehicleExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM vehicles WHERE vehicle_id = $1)`, vehicleID).Scan(&vehicleExists); err != nil {
		return nil, fmt.Errorf("assign vehicle: vehicle lookup: %w", err)
	}
	if !vehicleExists {
		return nil, ErrVehicleNotFound
	}

	before, err := getOrCreateDeployment(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	if before.VehicleID != nil && !override {
		return nil, ErrAlreadyDeployed
	}

	conflict, err := vehicleHasConflict(ctx, tx, vehicleID, trip.TripDate, start, end, before.DeploymentID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrVehicleUnavailable
	}

	after := before
	after.VehicleID = &vehicleID
	if driverID != nil {
		after.DriverID = driverID
	}
	if _, err := tx.Exec(ctx,
		`UPDATE deployments SET vehicle_id = $1, driver_id = COALESCE($2, driver_id) WHERE deployment_id = $3`,
		vehicleID, driverID, before.DeploymentID,
	); err != nil {
		return nil, fmt.Errorf("assign vehicle: update: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "assign_vehicle", "deployment", before.DeploymentID, before, after); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("assign vehicle: commit: %w", err)
	}
	return &after, nil
}

// AssignDriver binds a driver to a trip's deployment, subject to the same
// overlap check as AssignVehicle.
func (p *PG) AssignDriver(ctx context.Context, tripID, driverID int64, userID string) (*models.Deployment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign driver: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	trip, start, end, err := tripWindow(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}

	var driverExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM drivers WHERE driver_id = $1)`, driverID).Scan(&driverExists); err != nil {
		return nil, fmt.Errorf("assign driver: driver lookup: %w", err)
	}
	if !driverExists {
		return nil, ErrDriverNotFound
	}

	before, err := getOrCreateDeployment(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}

	conflict, err := driverHasConflict(ctx, tx, driverID, trip.TripDate, start, end, before.DeploymentID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrDriverUnavailable
	}

	after := before
	after.DriverID = &driverID
	if _, err := tx.Exec(ctx, `UPDATE deployments SET driver_id = $1 WHERE deployment_id = $2`, driverID, before.DeploymentID); err != nil {
		return nil, fmt.Errorf("assign driver: update: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "assign_driver", "deployment", before.DeploymentID, before, after); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("assign driver: commit: %w", err)
	}
	return &after, nil
}

// RemoveVehicle nulls the vehicle (and driver) on a trip's deployment.
// Fails with ErrNoDeployment if no deployment exists yet.
func (p *PG) RemoveVehicle(ctx context.Context, tripID int64, userID string) (*models.Deployment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("remove vehicle: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	before, err := scanDeployment(tx.QueryRow(ctx,
		`SELECT deployment_id, trip_id, vehicle_id, driver_id, deployed_at
		 FROM deployments WHERE trip_id = $1 FOR UPDATE`, tripID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDeployment
	}
	if err != nil {
		return nil, fmt.Errorf("remove vehicle: lookup: %w", err)
	}

	after := before
	after.VehicleID = nil
	after.DriverID = nil
	if _, err := tx.Exec(ctx, `UPDATE deployments SET vehicle_id = NULL, driver_id = NULL WHERE deployment_id = $1`, before.DeploymentID); err != nil {
		return nil, fmt.Errorf("remove vehicle: update: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "remove_vehicle", "deployment", before.DeploymentID, before, after); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("remove vehicle: commit: %w", err)
	}
	return &after, nil
}
