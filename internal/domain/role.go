package domain

import "fmt"

// Role type to distinguish between user populations.
type Role string

// The closed set of roles. Every switch over Role must handle all three.
const (
	RolePlatformAdmin Role = "admin"
	RoleGymAdmin      Role = "gym-admin"
	RoleClient        Role = "client"
)

// ParseRole converts a raw claim or request value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RolePlatformAdmin, RoleGymAdmin, RoleClient:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// HomePath is the landing route of each role's section.
func (r Role) HomePath() string {
	switch r {
	case RolePlatformAdmin:
		return "/admin/dashboard"
	case RoleGymAdmin:
		return "/dashboard"
	case RoleClient:
		return "/client/dashboard"
	default:
		return "/"
	}
}

// Platform identity used for the configured super administrator.
const (
	PlatformAdminUserID  = "super_admin"
	PlatformAdminName    = "Administrateur"
	PlatformAdminGymName = "F2Fit SuperAdmin"
)
