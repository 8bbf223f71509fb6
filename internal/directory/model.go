// Package directory exposes read-only department and doctor records.
// Rows are created and maintained by back-office tooling; the portal only reads them.
package directory

import "time"

// Department groups doctors by medical specialty.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	Icon        string `json:"icon,omitempty"`
}

// DoctorUser is the user summary joined onto a doctor row.
type DoctorUser struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Doctor is a bookable practitioner with department and user detail.
type Doctor struct {
	ID             int64      `json:"id"`
	Specialization string     `json:"specialization"`
	Department     Department `json:"department"`
	User           DoctorUser `json:"user"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListDoctorsFilter narrows doctor listings.
type ListDoctorsFilter struct {
	DepartmentID *int64
	Search       string
}
