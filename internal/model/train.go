package model

import "time"

// TrainRoute is a bookable train journey between two stations.  Like
// flights, each coach class keeps its own seat pool in train_classes.
//
// Fields:
//  ID            – primary key identifier.
//  TrainNumber   – operator train designator (e.g. "12951").
//  Name          – train name shown to travellers.
//  Origin        – station code of the departure station.
//  Destination   – station code of the arrival station.
//  DepartsAt     – scheduled departure in UTC.
//  ArrivesAt     – scheduled arrival in UTC.
//  BaseFareCents – base fare in cents used to derive per-class fares.
//  CreatedAt     – timestamp when the record was created.
type TrainRoute struct {
	ID            uint64    // train_routes.id
	TrainNumber   string    // train_routes.train_number
	Name          string    // train_routes.name
	Origin        string    // train_routes.origin
	Destination   string    // train_routes.destination
	DepartsAt     time.Time // train_routes.departs_at
	ArrivesAt     time.Time // train_routes.arrives_at
	BaseFareCents uint32    // train_routes.base_fare_cents
	CreatedAt     time.Time // train_routes.created_at
}
