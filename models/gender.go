package models

import "strings"

// Gender steuert, welche Referenzbereiche für einen Nutzer gelten.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderBoth   Gender = "both"
)

// ParseGender maps free-form profile values onto a Gender. Anything unknown is GenderBoth.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "männlich", "mann":
		return GenderMale
	case "female", "f", "w", "weiblich", "frau":
		return GenderFemale
	default:
		return GenderBoth
	}
}

// AppliesTo reports whether a record tagged with g is relevant for a user of gender user.
func (g Gender) AppliesTo(user Gender) bool {
	return g == GenderBoth || g == user
}
