package sdk

import "strings"

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.Name == RoleAdmin
}

// CanManageUsers reports the server-derived manage-users grant.
func (u *User) CanManageUsers() bool {
	return u != nil && u.Derived.EffectiveManageUsers
}

// CanAccess decides whether the user may open routePrefix.
//
// Admins may open everything. With allow-only ABAC active, the prefix must
// equal an allowed route or sit below one. Otherwise /users and /admin need
// the manage-users grant and every other route is open.
func (u *User) CanAccess(routePrefix string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	prefix := routePrefix
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if u.ABAC.Active && u.ABAC.Mode == ABACAllowOnly {
		for _, allowed := range u.ABAC.AllowedRoutes {
			if prefix == allowed || strings.HasPrefix(prefix, allowed+"/") {
				return true
			}
		}
		return false
	}
	if strings.HasPrefix(prefix, "/users") || strings.HasPrefix(prefix, "/admin") {
		return u.CanManageUsers()
	}
	return true
}

// HasPermission checks role permissions first, then derived flags.
func (u *User) HasPermission(name string) bool {
	if u == nil {
		return false
	}
	if u.Role.Permissions[name] {
		return true
	}
	if name == DerivedManageUser {
		return u.Derived.EffectiveManageUsers
	}
	return u.Derived.Flags[name]
}
