// Package appointments owns appointment records and the guarded cancel flow.
package appointments

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Appointment is a booked visit between a patient and a doctor.
type Appointment struct {
	ID           int64     `json:"id"`
	PatientID    string    `json:"patient_id"`
	DoctorID     int64     `json:"doctor_id"`
	StartTime    time.Time `json:"start_time"`
	Status       Status    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateParams are the fields required to book an appointment.
type CreateParams struct {
	DoctorID  int64     `json:"doctor_id"`
	PatientID string    `json:"patient_id"`
	StartTime time.Time `json:"start_time"`
	Reason    string    `json:"reason,omitempty"`
}

// CancelReasons is the fixed set a patient may pick from.
var CancelReasons = []string{
	"Schedule conflict",
	"Feeling better",
	"Found another doctor",
	"Transportation issues",
	"Other",
}

// IsValidCancelReason reports whether reason is one of the allowed values.
func IsValidCancelReason(reason string) bool {
	for _, r := range CancelReasons {
		if r == reason {
			return true
		}
	}
	return false
}
