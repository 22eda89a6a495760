package entity

// Platform roles. A user carries exactly one.
const (
	RoleDonor = "donor"
	RoleNgo   = "ngo"
	RoleAdmin = "admin"
)

var roles = map[string]struct{}{
	RoleDonor: {},
	RoleNgo:   {},
	RoleAdmin: {},
}

// ValidRole reports whether role belongs to the fixed role enumeration.
func ValidRole(role string) bool {
	_, ok := roles[role]
	return ok
}
