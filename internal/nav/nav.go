// Package nav derives the navigation items and ancillary widgets visible to
// a user, purely as a function of their profile and current path.
package nav

import (
	"strings"

	"github.com/harborview/clinic-portal/internal/identity"
)

// Item is one navigation entry.
type Item struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

// Visible is the computed navigation state for one profile and path.
type Visible struct {
	Items              []Item `json:"items"`
	ShowChatAffordance bool   `json:"show_chat_affordance"`
}

// role-specific home targets.
const (
	patientHome = "/dashboard"
	doctorHome  = "/doctor"
	adminHome   = "/admin"
)

// baseItems is the role-independent navigation set. Home's target is
// remapped per role in Compute.
var baseItems = []Item{
	{Label: "Home", Path: patientHome},
	{Label: "Appointments", Path: "/appointments"},
	{Label: "Book", Path: "/book"},
	{Label: "Doctors", Path: "/doctors"},
	{Label: "Profile", Path: "/settings"},
}

// Compute derives the visible navigation for a profile and path. profile may
// be nil for an unauthenticated visitor. The result is never cached; callers
// recompute on every route or profile change.
func Compute(profile *identity.Profile, pathname string) Visible {
	items := make([]Item, len(baseItems))
	copy(items, baseItems)

	if profile != nil {
		switch profile.Role {
		case identity.RoleAdmin:
			items[0].Path = adminHome
		case identity.RoleDoctor:
			items[0].Path = doctorHome
		}
	}
	for i := range items {
		items[i].Active = IsActive(pathname, items[i].Path)
	}

	return Visible{
		Items:              items,
		ShowChatAffordance: chatAffordance(profile, pathname),
	}
}

// IsActive reports whether path falls under item: an exact match, or a
// prefix match on a path-separator boundary so /book123 does not light up
// /book.
func IsActive(pathname, item string) bool {
	return pathname == item || strings.HasPrefix(pathname, item+"/")
}

// chatAffordance: shown to patients and unauthenticated visitors, never on
// staff routes.
func chatAffordance(profile *identity.Profile, pathname string) bool {
	if onStaffRoute(pathname) {
		return false
	}
	return profile == nil || profile.Role == identity.RolePatient
}

func onStaffRoute(pathname string) bool {
	return IsActive(pathname, adminHome) || IsActive(pathname, doctorHome)
}
