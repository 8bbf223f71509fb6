package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when an appointment lookup misses.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidCancelReason is returned when a cancellation reason is empty
	// or outside the allowed set. No data call is issued in that case.
	ErrInvalidCancelReason = errors.New("a cancellation reason is required")

	// ErrNotOwner is returned when a patient touches an appointment that is
	// not theirs.
	ErrNotOwner = errors.New("appointment belongs to another patient")

	// ErrNotCancellable is returned when the appointment is already
	// cancelled or completed.
	ErrNotCancellable = errors.New("appointment can no longer be cancelled")

	// ErrSlotTaken is returned when the requested start time collides with
	// an existing non-cancelled appointment for the doctor.
	ErrSlotTaken = errors.New("the selected time slot is no longer available")
)
