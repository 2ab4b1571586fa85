package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tripstack/travel-reservation/internal/model"
)

// TrainRouteRepo provides data access to the train_routes table.
type TrainRouteRepo struct {
	db *sql.DB
}

// NewTrainRouteRepo returns a new TrainRouteRepo bound to the provided database.
func NewTrainRouteRepo(db *sql.DB) *TrainRouteRepo { return &TrainRouteRepo{db: db} }

// DB exposes the underlying handle for callers that need to wrap
// route creation and pool provisioning in one transaction.
func (r *TrainRouteRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a train route within the provided transaction and
// populates t.ID.  Station codes are normalized to upper case.
func (r *TrainRouteRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.TrainRoute) error {
	t.Origin = strings.ToUpper(strings.TrimSpace(t.Origin))
	t.Destination = strings.ToUpper(strings.TrimSpace(t.Destination))
	res, err := tx.ExecContext(ctx,
		`INSERT INTO train_routes (train_number, name, origin, destination, departs_at, arrives_at, base_fare_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TrainNumber, t.Name, t.Origin, t.Destination,
		t.DepartsAt.UTC(), t.ArrivesAt.UTC(), t.BaseFareCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID fetches a train route by id.  Returns ErrTrainRouteNotFound
// when no row exists.
func (r *TrainRouteRepo) GetByID(ctx context.Context, id uint64) (model.TrainRoute, error) {
	var t model.TrainRoute
	err := r.db.QueryRowContext(ctx,
		`SELECT id, train_number, name, origin, destination, departs_at, arrives_at, base_fare_cents, created_at
		 FROM train_routes WHERE id = ? LIMIT 1`, id).
		Scan(&t.ID, &t.TrainNumber, &t.Name, &t.Origin, &t.Destination,
			&t.DepartsAt, &t.ArrivesAt, &t.BaseFareCents, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TrainRoute{}, ErrTrainRouteNotFound
	}
	return t, err
}

// Search lists train routes, optionally filtered by origin,
// destination and departure date (YYYY-MM-DD).  Empty filters are
// ignored.  Results are ordered by departure time.
func (r *TrainRouteRepo) Search(ctx context.Context, origin, destination, date string) ([]model.TrainRoute, error) {
	q := `SELECT id, train_number, name, origin, destination, departs_at, arrives_at, base_fare_cents, created_at FROM train_routes`
	var (
		conds []string
		args  []interface{}
	)
	if origin = strings.ToUpper(strings.TrimSpace(origin)); origin != "" {
		conds = append(conds, "origin = ?")
		args = append(args, origin)
	}
	if destination = strings.ToUpper(strings.TrimSpace(destination)); destination != "" {
		conds = append(conds, "destination = ?")
		args = append(args, destination)
	}
	if date = strings.TrimSpace(date); date != "" {
		conds = append(conds, "DATE(departs_at) = ?")
		args = append(args, date)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY departs_at ASC LIMIT 200"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var routes []model.TrainRoute
	for rows.Next() {
		var t model.TrainRoute
		if err := rows.Scan(&t.ID, &t.TrainNumber, &t.Name, &t.Origin, &t.Destination,
			&t.DepartsAt, &t.ArrivesAt, &t.BaseFareCents, &t.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return routes, nil
}
