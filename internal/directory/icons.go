package directory

import "strings"

// defaultIcon is used for any department without a dedicated icon.
const defaultIcon = "stethoscope"

var departmentIcons = map[string]string{
	"cardiology":    "heart-pulse",
	"dermatology":   "hand",
	"neurology":     "brain",
	"orthopedics":   "bone",
	"pediatrics":    "baby",
	"ophthalmology": "eye",
	"dentistry":     "tooth",
	"psychiatry":    "head-circuit",
	"radiology":     "scan",
	"general":       "stethoscope",
}

// IconFor maps a department name to its icon slug, case-insensitively.
// Unknown departments fall back to a generic icon.
func IconFor(name string) string {
	if icon, ok := departmentIcons[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return defaultIcon
}
