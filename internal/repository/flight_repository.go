package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tripstack/travel-reservation/internal/model"
)

// FlightRepo provides data access to the flights table.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo returns a new FlightRepo bound to the provided database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle for callers that need to wrap
// flight creation and pool provisioning in one transaction.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a flight within the provided transaction and
// populates f.ID.  Airport codes are normalized to upper case.
func (r *FlightRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.Flight) error {
	f.Origin = strings.ToUpper(strings.TrimSpace(f.Origin))
	f.Destination = strings.ToUpper(strings.TrimSpace(f.Destination))
	res, err := tx.ExecContext(ctx,
		`INSERT INTO flights (airline, flight_number, origin, destination, departs_at, arrives_at, base_fare_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Airline, f.FlightNumber, f.Origin, f.Destination,
		f.DepartsAt.UTC(), f.ArrivesAt.UTC(), f.BaseFareCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// GetByID fetches a flight by id.  Returns ErrFlightNotFound when no
// row exists.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (model.Flight, error) {
	var f model.Flight
	err := r.db.QueryRowContext(ctx,
		`SELECT id, airline, flight_number, origin, destination, departs_at, arrives_at, base_fare_cents, created_at
		 FROM flights WHERE id = ? LIMIT 1`, id).
		Scan(&f.ID, &f.Airline, &f.FlightNumber, &f.Origin, &f.Destination,
			&f.DepartsAt, &f.ArrivesAt, &f.BaseFareCents, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flight{}, ErrFlightNotFound
	}
	return f, err
}

// Search lists flights, optionally filtered by origin, destination and
// departure date (YYYY-MM-DD).  Empty filters are ignored.  Results
// are ordered by departure time.
func (r *FlightRepo) Search(ctx context.Context, origin, destination, date string) ([]model.Flight, error) {
	q := `SELECT id, airline, flight_number, origin, destination, departs_at, arrives_at, base_fare_cents, created_at FROM flights`
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
	var flights []model.Flight
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.ID, &f.Airline, &f.FlightNumber, &f.Origin, &f.Destination,
			&f.DepartsAt, &f.ArrivesAt, &f.BaseFareCents, &f.CreatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flights, nil
}
