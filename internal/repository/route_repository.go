package repository

import (
	"context"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// RouteRepo manages directed edges in the routes table and their
// stationroutes association rows.
type RouteRepo struct{ db DBTX }

const routeSelect = `SELECT id, name, from_station_id, to_station_id FROM routes`

func scanRoute(row rowScanner) (model.Route, error) {
	var rt model.Route
	err := row.Scan(&rt.ID, &rt.Name, &rt.FromStationID, &rt.ToStationID)
	return rt, err
}

func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO routes (name, from_station_id, to_station_id) VALUES (?,?,?)",
		rt.Name, rt.FromStationID, rt.ToStationID))
	if err != nil {
		return err
	}
	rt.ID = id
	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (model.Route, error) {
	rt, err := scanRoute(r.db.QueryRowContext(ctx, routeSelect+" WHERE id=?", id))
	return rt, translate(err)
}

func (r *RouteRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM routes WHERE name=?", name).Scan(&n)
	return n > 0, err
}

func (r *RouteRepo) FirstFrom(ctx context.Context, stationID uint64) (model.Route, error) {
	rt, err := scanRoute(r.db.QueryRowContext(ctx,
		routeSelect+" WHERE from_station_id=? ORDER BY id LIMIT 1", stationID))
	return rt, translate(err)
}

func (r *RouteRepo) FirstTo(ctx context.Context, stationID uint64) (model.Route, error) {
	rt, err := scanRoute(r.db.QueryRowContext(ctx,
		routeSelect+" WHERE to_station_id=? ORDER BY id LIMIT 1", stationID))
	return rt, translate(err)
}

func (r *RouteRepo) ListFrom(ctx context.Context, stationID uint64) ([]model.Route, error) {
	rows, err := r.db.QueryContext(ctx, routeSelect+" WHERE from_station_id=? ORDER BY id", stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// CountEdges returns the number of routes entering and leaving a station.
func (r *RouteRepo) CountEdges(ctx context.Context, stationID uint64) (in, out int, err error) {
	const q = `SELECT
    COALESCE(SUM(to_station_id = ?), 0),
    COALESCE(SUM(from_station_id = ?), 0)
FROM routes WHERE to_station_id = ? OR from_station_id = ?`
	err = r.db.QueryRowContext(ctx, q, stationID, stationID, stationID, stationID).Scan(&in, &out)
	return in, out, err
}

// List returns every route with the names of its endpoints.
func (r *RouteRepo) List(ctx context.Context) ([]model.RouteView, error) {
	const q = `SELECT r.id, r.name, r.from_station_id, r.to_station_id, f.name, t.name
FROM routes r
JOIN stations f ON f.id = r.from_station_id
JOIN stations t ON t.id = r.to_station_id
ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RouteView
	for rows.Next() {
		var v model.RouteView
		if err := rows.Scan(&v.ID, &v.Name, &v.FromStationID, &v.ToStationID, &v.FromStationName, &v.ToStationName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *RouteRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE routes SET name=? WHERE id=?", name, id)
	return translate(err)
}

// UpdateTarget points an existing route at a new destination station.
func (r *RouteRepo) UpdateTarget(ctx context.Context, id, toStationID uint64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE routes SET to_station_id=? WHERE id=?", toStationID, id)
	return err
}

func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM routes WHERE id=?", id))
}

func (r *RouteRepo) DeleteTouching(ctx context.Context, stationID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM routes WHERE from_station_id=? OR to_station_id=?", stationID, stationID)
	return err
}

// StationRouteRepo manages the stationroutes association table.
type StationRouteRepo struct{ db DBTX }

func (r *StationRouteRepo) Create(ctx context.Context, sr *model.StationRoute) error {
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO stationroutes (station_id, route_id) VALUES (?,?)", sr.StationID, sr.RouteID))
	if err != nil {
		return err
	}
	sr.ID = id
	return nil
}

func (r *StationRouteRepo) DeleteByStation(ctx context.Context, stationID uint64) error {
	const q = `DELETE FROM stationroutes
WHERE station_id = ?
   OR route_id IN (SELECT id FROM (
        SELECT id FROM routes WHERE from_station_id = ? OR to_station_id = ?
   ) AS touching)`
	_, err := r.db.ExecContext(ctx, q, stationID, stationID, stationID)
	return err
}

func (r *StationRouteRepo) DeleteByRoute(ctx context.Context, routeID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM stationroutes WHERE route_id=?", routeID)
	return err
}

// ZoneRepo reads and prices fare zones.
type ZoneRepo struct{ db DBTX }

func (r *ZoneRepo) GetByID(ctx context.Context, id uint64) (model.Zone, error) {
	var z model.Zone
	err := r.db.QueryRowContext(ctx, "SELECT id, zone_type, price FROM zones WHERE id=?", id).
		Scan(&z.ID, &z.ZoneType, &z.Price)
	return z, translate(err)
}

func (r *ZoneRepo) List(ctx context.Context) ([]model.Zone, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, zone_type, price FROM zones ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.ZoneType, &z.Price); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r *ZoneRepo) UpdatePrice(ctx context.Context, id uint64, price int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE zones SET price=? WHERE id=?", price, id)
	return err
}
