// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published after a reservation transaction
// commits.  It carries enough information for downstream consumers to
// log, notify or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID      string `json:"booking_id"`
	SubBookingID   string `json:"sub_booking_id"`
	UserID         uint64 `json:"user_id"`
	ItemType       string `json:"item_type"`
	ItemID         uint64 `json:"item_id"`
	ClassCode      string `json:"class_code"`
	Quantity       uint32 `json:"quantity"`
	TotalFareCents uint64 `json:"total_fare_cents"`
	CreatedAt      string `json:"created_at"`
}
