// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as reading another traveller's
// booking. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrFlightNotFound is returned when a flight id does not exist.
var ErrFlightNotFound = errors.New("flight not found")

// ErrTrainRouteNotFound is returned when a train route id does not exist.
var ErrTrainRouteNotFound = errors.New("train route not found")
