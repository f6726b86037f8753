package domain

// Role identifies the acting capacity of a caller. Roles are self-selected
// at session creation and trusted as given; verifying identity is out of
// scope for this service.
type Role string

const (
	RoleTeacher     Role = "TEACHER"
	RoleAdmin       Role = "ADMIN"
	RoleMaintenance Role = "MAINTENANCE"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	switch r {
	case RoleTeacher, RoleAdmin, RoleMaintenance:
		return true
	default:
		return false
	}
}

// Actor is the identity a mutation is performed as.
type Actor struct {
	Name string
	Role Role
}
