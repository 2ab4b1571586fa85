// Package reservation implements the seat reservation service: the
// check-lock-decrement-commit transaction that makes overselling a
// class pool impossible under concurrent bookings.
package reservation

import "errors"

// ErrItemNotFound is returned when the requested flight or train
// route (or its class pool) does not exist.  Not retryable.
var ErrItemNotFound = errors.New("item not found")

// ErrInvalidInput is returned when the quantity or class code is
// malformed.  Failures wrap this sentinel with a detail message, so
// use errors.Is to test for it.  Not retryable.
var ErrInvalidInput = errors.New("invalid input")

// ErrInsufficientInventory is returned when the pool holds fewer
// seats than requested.  This is a business outcome, not a fault; the
// caller may retry with different parameters.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrBusy is returned when the pool row lock could not be acquired
// before the lock-wait timeout, or the transaction was chosen as a
// deadlock victim.  The transaction has been rolled back; the caller
// may retry with backoff.
var ErrBusy = errors.New("inventory busy")
