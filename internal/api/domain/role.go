package domain

// Role is the closed set of access levels a user can hold. It is assigned
// once at registration from the invite that was redeemed and can only be
// changed by an admin afterwards.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
)

// Roles lists every recognised role.
var Roles = []Role{RoleAdmin, RoleManager, RoleDeveloper}

// ParseRole maps a string onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string { return string(r) }

// CanInvite reports whether a holder of r may mint an invite granting
// target. Admin invites are admin-only; managers can invite managers and
// developers; developers cannot invite.
func (r Role) CanInvite(target Role) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return target == RoleManager || target == RoleDeveloper
	default:
		return false
	}
}
