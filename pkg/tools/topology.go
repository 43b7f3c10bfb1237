package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/models"
)

// ListAllStops returns every stop, for wizard option providers (C9/C12).
func (p *PG) ListAllStops(ctx context.Context) ([]models.Stop, error) {
	rows, err := p.pool.Query(ctx, `SELECT stop_id, name, latitude, longitude, landmark FROM stops ORDER BY stop_id`)
	if err != nil {
		return nil, fmt.Errorf("list all stops: %w", err)
	}
	defer rows.Close()

	var out []models.Stop
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.StopID, &s.Name, &s.Latitude, &s.Longitude, &s.Landmark); err != nil {
			return nil, fmt.Errorf("list all stops: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAllPaths returns every path.
func (p *PG) ListAllPaths(ctx context.Context) ([]models.Path, error) {
	rows, err := p.pool.Query(ctx, `SELECT path_id, name FROM paths ORDER BY path_id`)
	if err != nil {
		return nil, fmt.Errorf("list all paths: %w", err)
	}
	defer rows.Close()

	var out []models.Path
	for rows.Next() {
		var pa models.Path
		if err := rows.Scan(&pa.PathID, &pa.Name); err != nil {
			return nil, fmt.Errorf("list all paths: scan: %w", err)
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

// ListAllRoutes returns every route.
func (p *PG) ListAllRoutes(ctx context.Context) ([]models.Route, error) {
	rows, err := p.pool.Query(ctx, `SELECT route_id, path_id, direction, shift_time FROM routes ORDER BY route_id`)
	if err != nil {
		return nil, fmt.Errorf("list all routes: %w", err)
	}
	defer rows.Close()

	var out []models.Route
	for rows.Next() {
		var r models.Route
		var direction string
		if err := rows.Scan(&r.RouteID, &r.PathID, &direction, &r.ShiftTime); err != nil {
			return nil, fmt.Errorf("list all routes: scan: %w", err)
		}
		r.Direction = models.Direction(direction)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateStop inserts a new stop.
func (p *PG) CreateStop(ctx context.Context, name string, latitude, longitude float64, landmark string, userID string) (*models.Stop, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create stop: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stop := models.Stop{Name: name, Latitude: latitude, Longitude: longitude, Landmark: landmark}
	if err := tx.QueryRow(ctx,
		`INSERT INTO stops (name, latitude, longitude, landmark) VALUES ($1, $2, $3, $4) RETURNING stop_id`,
		name, latitude, longitude, landmark,
	).Scan(&stop.StopID); err != nil {
		return nil, fmt.Errorf("create stop: insert: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "create_stop", "stop", stop.StopID, nil, stop); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create stop: commit: %w", err)
	}
	return &stop, nil
}

// CreatePath inserts a new path and its ordered stop membership rows
// atomically.
func (p *PG) CreatePath(ctx context.Context, name string, stopIDs []int64, userID string) (*models.Path, error) {
	if name == "" || len(stopIDs) == 0 {
		return nil, ErrInvalidInput
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create path: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stopID := range stopIDs {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stops WHERE stop_id = $1)`, stopID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("create path: stop lookup: %w", err)
		}
		if !exists {
			return nil, ErrStopNotFound
		}
	}

	path := models.Path{Name: name}
	if err := tx.QueryRow(ctx, `INSERT INTO paths (name) VALUES ($1) RETURNING path_id`, name).Scan(&path.PathID); err != nil {
		return nil, fmt.Errorf("create path: insert: %w", err)
	}

	for i, stopID := range stopIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO path_stops (path_id, stop_id, sequence) VALUES ($1, $2, $3)`,
			path.PathID, stopID, i,
		); err != nil {
			return nil, fmt.Errorf("create path: insert path_stop: %w", err)
		}
	}

	if err := audit.Write(ctx, tx, userID, "create_path", "path", path.PathID, nil, path); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create path: commit: %w", err)
	}
	return &path, nil
}

// CreateRoute inserts a new route: a path walked in a direction on a shift.
func (p *PG) CreateRoute(ctx context.Context, pathID int64, direction models.Direction, shiftTime time.Time, userID string) (*models.Route, error) {
	canonical := models.Direction(canonicalEnum(string(direction)))
	if canonical != models.DirectionUp && canonical != models.DirectionDown {
		return nil, ErrInvalidInput
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create route: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM paths WHERE path_id = $1)`, pathID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("create route: path lookup: %w", err)
	}
	if !exists {
		return nil, ErrPathNotFound
	}

	route := models.Route{PathID: pathID, Direction: canonical, ShiftTime: shiftTime}
	err = tx.QueryRow(ctx,
		`INSERT INTO routes (path_id, direction, shift_time) VALUES ($1, $2, $3) RETURNING route_id`,
		pathID, string(canonical), shiftTime,
	).Scan(&route.RouteID)
	if err != nil {
		return nil, fmt.Errorf("create route: insert: %w", err)
	}

	if err := audit.Write(ctx, tx, userID, "create_route", "route", route.RouteID, nil, route); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create route: commit: %w", err)
	}
	return &route, nil
}
