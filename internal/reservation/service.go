package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/tripstack/travel-reservation/internal/model"
	"github.com/tripstack/travel-reservation/internal/repository"
)

// MySQL server error numbers surfaced by the driver when a row lock
// cannot be taken.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// Request describes one reservation attempt against a single class
// pool.  ClassCode may be empty, in which case the cheapest
// configured class for the item type is used.
type Request struct {
	UserID    uint64
	ItemType  model.ItemType
	ItemID    uint64
	ClassCode string
	Quantity  uint32
}

// Result is returned on success.  TotalFareCents is frozen at booking
// time; SeatsLeft is the pool's counter immediately after the commit.
type Result struct {
	BookingID      string
	SubBookingID   string
	ClassCode      string
	Quantity       uint32
	TotalFareCents uint64
	SeatsLeft      uint32
}

// Service executes reservations.  It exclusively owns the
// read-modify-write of seats_available: the counter is only ever read
// under a row lock inside the transaction opened here, never from a
// cached or pre-transaction value.
type Service struct {
	db        *sql.DB
	inventory *repository.InventoryRepo
	bookings  *repository.BookingRepo
	fares     model.FareTable
}

// NewService constructs a Service.  All dependencies must be non-nil
// and the fare table must already be validated.
func NewService(db *sql.DB, inventory *repository.InventoryRepo, bookings *repository.BookingRepo, fares model.FareTable) *Service {
	if db == nil || inventory == nil || bookings == nil || fares == nil {
		panic("nil dependency passed to reservation.NewService")
	}
	return &Service{db: db, inventory: inventory, bookings: bookings, fares: fares}
}

// Reserve atomically checks availability, records a booking and
// decrements the pool.  Either everything commits or nothing does:
// any failure after the transaction begins rolls the whole thing
// back before the error is surfaced, so a caller never observes a
// booking without its decrement or vice versa.
//
// Two concurrent calls against the same pool are serialized by the
// row lock taken in LockPoolTx; the second caller observes the first
// caller's committed decrement (or its rollback) before making its
// own availability decision.  Calls against different pools proceed
// in parallel.
//
// The operation is not idempotent: every call that passes its
// preconditions consumes inventory and issues fresh identifiers.
func (s *Service) Reserve(ctx context.Context, req Request) (Result, error) {
	if !req.ItemType.Valid() {
		return Result{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, req.ItemType)
	}
	if req.Quantity < 1 {
		return Result{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	classCode := strings.ToUpper(strings.TrimSpace(req.ClassCode))
	if classCode == "" {
		classCode = s.fares.DefaultClass(req.ItemType)
	}
	if !s.fares.HasClass(req.ItemType, classCode) {
		return Result{}, fmt.Errorf("%w: unknown class %q for %s", ErrInvalidInput, classCode, req.ItemType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin reservation tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Availability is only trusted when read under the row lock.
	pool, err := s.inventory.LockPoolTx(ctx, tx, req.ItemType, req.ItemID, classCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrItemNotFound
		}
		return Result{}, classify(err)
	}
	if pool.SeatsAvailable < req.Quantity {
		return Result{}, ErrInsufficientInventory
	}

	booking := &model.Booking{
		BookingID:      uuid.NewString(),
		SubBookingID:   uuid.NewString(),
		UserID:         req.UserID,
		ItemType:       req.ItemType,
		ItemID:         req.ItemID,
		ClassCode:      classCode,
		Quantity:       req.Quantity,
		TotalFareCents: uint64(pool.FareCents) * uint64(req.Quantity),
	}
	if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
		return Result{}, classify(err)
	}
	if err := s.inventory.DecrementTx(ctx, tx, req.ItemType, req.ItemID, classCode, req.Quantity); err != nil {
		return Result{}, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, classify(err)
	}
	committed = true

	return Result{
		BookingID:      booking.BookingID,
		SubBookingID:   booking.SubBookingID,
		ClassCode:      classCode,
		Quantity:       req.Quantity,
		TotalFareCents: booking.TotalFareCents,
		SeatsLeft:      pool.SeatsAvailable - req.Quantity,
	}, nil
}

// classify maps driver lock errors onto ErrBusy; everything else
// passes through and is treated as an internal failure by callers.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
	}
	return err
}
