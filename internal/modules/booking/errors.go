package booking

import "errors"

var (
	// ErrValidation marks malformed tool arguments; wrapped with the failing
	// field before it reaches the handler.
	ErrValidation = errors.New("invalid args")
	// ErrNoAvailability is the capacity failure at create/modify time. The
	// caller should re-search, not retry the same slot.
	ErrNoAvailability = errors.New("no availability for requested time")
	// ErrNotFound covers both a missing booking id and a booking owned by
	// another tenant; the two are indistinguishable on the wire.
	ErrNotFound = errors.New("booking not found for this business")
	// ErrAlreadyCancelled rejects modification of a terminal booking.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)
