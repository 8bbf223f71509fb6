package wizard

import "errors"

var (
	// ErrSessionNotFound is returned when a booking session id is unknown
	// or has expired.
	ErrSessionNotFound = errors.New("booking session not found")

	// ErrNotSessionOwner is returned when a session is accessed by a user
	// other than the one who started it.
	ErrNotSessionOwner = errors.New("booking session belongs to another user")

	// ErrInvalidTransition is returned when NextStep is called while the
	// current step's required field is unset, or SetStep jumps somewhere
	// the selection cannot support.
	ErrInvalidTransition = errors.New("current step is not complete")

	// ErrIncompleteSelection is returned when confirm is attempted without
	// department, doctor, date and time slot all present.
	ErrIncompleteSelection = errors.New("booking selection is incomplete")

	// ErrMissingField is returned by setters given a zero-value argument.
	ErrMissingField = errors.New("a selection value is required")

	// ErrDepartmentMismatch is returned when the chosen doctor does not
	// belong to the selected department.
	ErrDepartmentMismatch = errors.New("doctor is not part of the selected department")

	// ErrSlotDateMismatch is returned when the time slot falls on a
	// different calendar day than the selected date.
	ErrSlotDateMismatch = errors.New("time slot does not match the selected date")

	// ErrSlotUnavailable is returned when the requested slot is outside the
	// doctor's availability window or already booked.
	ErrSlotUnavailable = errors.New("time slot is not available")

	// ErrStaleSession is returned when a mutation carries a version that no
	// longer matches the stored session, meaning a newer request superseded it.
	ErrStaleSession = errors.New("booking session was updated by a newer request")
)
