package auth

import "slices"

// Role is an authorisation tier issued by the core.
type Role string

// Roles known to the core.
const (
	// RolePanel is a wall panel identity. Panels may look but not touch.
	RolePanel Role = "panel"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Permission is a named capability on the extensions API.
type Permission string

// Permission constants.
const (
	PermSettingsRead  Permission = "settings:read"
	PermSettingsWrite Permission = "settings:write"
	PermStorageManage Permission = "storage:manage"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RolePanel: {PermSettingsRead},
	RoleUser:  {PermSettingsRead, PermSettingsWrite},
	RoleAdmin: {PermSettingsRead, PermSettingsWrite, PermStorageManage},
	RoleOwner: {PermSettingsRead, PermSettingsWrite, PermStorageManage},
}

// IsValidRole reports whether r is a role the core issues.
func IsValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// HasPermission reports whether role grants perm. Unknown roles have none.
func HasPermission(role Role, perm Permission) bool {
	return slices.Contains(rolePermissions[role], perm)
}

// PermissionsForRole returns a copy of the permissions granted to role,
// or nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}
