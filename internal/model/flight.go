package model

import "time"

// Flight is a bookable flight between two airports.  Seat
// availability is not stored here; each cabin class has its own
// independently tracked pool in flight_classes.
//
// Fields:
//  ID            – primary key identifier.
//  Airline       – marketing carrier name.
//  FlightNumber  – carrier flight designator (e.g. "6E-203").
//  Origin        – IATA code of the departure airport.
//  Destination   – IATA code of the arrival airport.
//  DepartsAt     – scheduled departure in UTC.
//  ArrivesAt     – scheduled arrival in UTC.
//  BaseFareCents – base fare in cents; per-class fares are derived
//                  from this via the fare-class table at creation time.
//  CreatedAt     – timestamp when the record was created.
type Flight struct {
	ID            uint64    // flights.id
	Airline       string    // flights.airline
	FlightNumber  string    // flights.flight_number
	Origin        string    // flights.origin
	Destination   string    // flights.destination
	DepartsAt     time.Time // flights.departs_at
	ArrivesAt     time.Time // flights.arrives_at
	BaseFareCents uint32    // flights.base_fare_cents
	CreatedAt     time.Time // flights.created_at
}
