// Package identity carries the authenticated profile through request context.
// Profiles are issued by the external auth provider; this package only reads them.
package identity

import "strings"

// Role is the portal role carried in the auth token.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole normalises a role claim, defaulting unknown values to patient.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDoctor:
		return RoleDoctor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RolePatient
	}
}

// Profile is the read-only authenticated user snapshot.
type Profile struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}
