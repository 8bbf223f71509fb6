package directory

import "errors"

var (
	// ErrDepartmentNotFound is returned when a department lookup misses.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrDoctorNotFound is returned when a doctor lookup misses.
	ErrDoctorNotFound = errors.New("doctor not found")
)
