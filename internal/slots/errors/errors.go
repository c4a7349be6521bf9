package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrAlreadyBooked = errors.New("slot is already booked")

	ErrAdminBlocked = errors.New("slot is blocked by an administrator")

	ErrNotBooked = errors.New("slot is not booked")

	ErrUnauthorized = errors.New("caller is not authorized to cancel this booking")

	// ErrConflictingWrite means a conditional update lost a race against
	// a concurrent caller; the slot no longer matches the observed state.
	ErrConflictingWrite = errors.New("slot was modified concurrently")

	ErrStoreUnavailable = errors.New("slot store is unavailable")
)
