package auth

import "strings"

// Role is a named capability held by an identity
type Role string

const (
	// RoleUser is held by every authenticated identity
	RoleUser Role = "user"
	// RoleAdmin is held by identities flagged as admin
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// RolesOf returns the role set of identity
func RolesOf(identity *Identity) []Role {
	if identity == nil {
		return nil
	}
	if identity.IsAdmin {
		return []Role{RoleAdmin, RoleUser}
	}
	return []Role{RoleUser}
}

// HasRole checks if the identity holds role
func (i *Identity) HasRole(role Role) bool {
	for _, r := range RolesOf(i) {
		if r == role {
			return true
		}
	}
	return false
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type, ignoring case
func ParseRole(roleStr string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}
