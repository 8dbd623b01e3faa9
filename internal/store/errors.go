package store

import "errors"

var (
	// ErrConflict is returned when a write would double-book an employee.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	// ErrIdempotencyConflict is returned when an idempotency key is reused
	// for a booking with different details.
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)
