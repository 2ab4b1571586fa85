package repository

import (
	"context"
	"database/sql"

	"github.com/tripstack/travel-reservation/internal/model"
)

// BookingRepo provides data access to the bookings table.  Bookings
// are insert-only: rows are written exactly once inside the
// reservation transaction and never updated or deleted afterwards.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the provided transaction and
// populates b.ID.  The caller must commit or roll back; on rollback
// the row vanishes together with the inventory decrement so no
// half-applied booking is ever observable.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (booking_id, sub_booking_id, user_id, item_type, item_id, class_code, quantity, total_fare_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BookingID, b.SubBookingID, b.UserID, string(b.ItemType), b.ItemID,
		b.ClassCode, b.Quantity, b.TotalFareCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByBookingIDForUser fetches a booking by its public booking_id.
// Returns sql.ErrNoRows when the booking does not exist and
// ErrForbidden when it belongs to a different user.
func (r *BookingRepo) GetByBookingIDForUser(ctx context.Context, bookingID string, userID uint64) (model.Booking, error) {
	var b model.Booking
	var itemType string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, booking_id, sub_booking_id, user_id, item_type, item_id, class_code, quantity, total_fare_cents, created_at
		 FROM bookings WHERE booking_id = ? LIMIT 1`, bookingID).
		Scan(&b.ID, &b.BookingID, &b.SubBookingID, &b.UserID, &itemType, &b.ItemID,
			&b.ClassCode, &b.Quantity, &b.TotalFareCents, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.ItemType = model.ItemType(itemType)
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

// ListByUser returns all bookings created by a user, newest first.
// When no bookings exist, it returns an empty slice.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, sub_booking_id, user_id, item_type, item_id, class_code, quantity, total_fare_cents, created_at
		 FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var itemType string
		if err := rows.Scan(&b.ID, &b.BookingID, &b.SubBookingID, &b.UserID, &itemType, &b.ItemID,
			&b.ClassCode, &b.Quantity, &b.TotalFareCents, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.ItemType = model.ItemType(itemType)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
