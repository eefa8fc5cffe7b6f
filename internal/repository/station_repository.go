package repository

import (
	"context"

	"github.com/iliyamo/metro-ticketing/internal/model"
)

// StationRepo manages the stations table.
type StationRepo struct{ db DBTX }

const stationSelect = `SELECT id, name, type, position, status FROM stations`

func scanStation(row rowScanner) (model.Station, error) {
	var st model.Station
	err := row.Scan(&st.ID, &st.Name, &st.Type, &st.Position, &st.Status)
	return st, err
}

// Create inserts st with its position and status defaults applied.
func (r *StationRepo) Create(ctx context.Context, st *model.Station) error {
	if st.Position == "" {
		st.Position = model.PositionNotConnected
	}
	if st.Status == "" {
		st.Status = model.StationStatusNew
	}
	id, err := insertID(r.db.ExecContext(ctx,
		"INSERT INTO stations (name, type, position, status) VALUES (?,?,?,?)",
		st.Name, st.Type, st.Position, st.Status))
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

func (r *StationRepo) GetByID(ctx context.Context, id uint64) (model.Station, error) {
	st, err := scanStation(r.db.QueryRowContext(ctx, stationSelect+" WHERE id=?", id))
	return st, translate(err)
}

func (r *StationRepo) GetByName(ctx context.Context, name string) (model.Station, error) {
	st, err := scanStation(r.db.QueryRowContext(ctx, stationSelect+" WHERE name=? LIMIT 1", name))
	return st, translate(err)
}

func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.QueryContext(ctx, stationSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *StationRepo) UpdatePosition(ctx context.Context, id uint64, position string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE stations SET position=? WHERE id=?", position, id)
	return err
}

func (r *StationRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE stations SET name=? WHERE id=?", name, id)
	return translate(err)
}

func (r *StationRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM stations WHERE id=?", id))
}
