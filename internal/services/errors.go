package services

import "errors"

// Sentinel errors surfaced by the booking domain. Handlers map these to
// HTTP statuses; anything else is an unexpected persistence error and is
// reported with its underlying message.
var (
	ErrTherapistNotFound = errors.New("therapist not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidDate       = errors.New("invalid date format")
	ErrSlotTaken         = errors.New("time slot is already booked")
	ErrForbidden         = errors.New("not allowed to perform this action")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)
