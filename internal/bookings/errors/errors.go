package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken is returned when a confirmed booking already holds the slot.
	ErrSlotTaken = errors.New("time slot already booked")
)
