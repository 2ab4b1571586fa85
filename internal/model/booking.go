package model

import "time"

// ItemType discriminates which kind of inventory item a booking or
// class pool belongs to.  The value is stored verbatim in the
// bookings table and selects the pool table used by the inventory
// repository.
type ItemType string

const (
	ItemTypeFlight ItemType = "FLIGHT" // pools live in flight_classes
	ItemTypeTrain  ItemType = "TRAIN"  // pools live in train_classes
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeFlight || t == ItemTypeTrain
}

// ClassPool is one independently tracked availability/price bucket
// within an item: a cabin class on a flight or a coach class on a
// train route.  SeatsAvailable is the mutable inventory counter; it
// is only ever changed inside a reservation or restock transaction
// while the row is locked, and never goes negative.
//
// Fields:
//  ItemID         – owning flight or train route.
//  ClassCode      – class discriminator (e.g. ECONOMY, 3A).
//  FareCents      – per-seat fare in cents, frozen at item creation.
//  SeatsAvailable – remaining seats in this pool.
type ClassPool struct {
	ItemID         uint64 // flight_classes.flight_id / train_classes.route_id
	ClassCode      string // *_classes.class_code
	FareCents      uint32 // *_classes.fare_cents
	SeatsAvailable uint32 // *_classes.seats_available
}

// Booking records a confirmed reservation of seats in a single class
// pool.  Rows are written exactly once, inside the same transaction
// that decrements the pool, and are never updated or deleted.  The
// total fare is frozen at booking time and never recomputed.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – opaque unique identifier issued to the caller.
//  SubBookingID   – unique identifier of this booking line; distinct
//                   from BookingID so that a future multi-leg booking
//                   could group several lines under one BookingID.
//  UserID         – user who made the booking.
//  ItemType       – FLIGHT or TRAIN.
//  ItemID         – the flight or train route that was booked.
//  ClassCode      – class pool the seats were taken from.
//  Quantity       – number of seats reserved, always >= 1.
//  TotalFareCents – FareCents * Quantity at booking time.
//  CreatedAt      – creation timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	BookingID      string    // bookings.booking_id
	SubBookingID   string    // bookings.sub_booking_id
	UserID         uint64    // bookings.user_id
	ItemType       ItemType  // bookings.item_type
	ItemID         uint64    // bookings.item_id
	ClassCode      string    // bookings.class_code
	Quantity       uint32    // bookings.quantity
	TotalFareCents uint64    // bookings.total_fare_cents
	CreatedAt      time.Time // bookings.created_at
}
