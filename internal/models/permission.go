package models

// permissionTable lists, per requested role, the user roles granted it.
// Admin is handled as a superset before the table is consulted.
var permissionTable = map[Role]map[Role]struct{}{
	RoleAdmin:       roleSet(RoleAdmin),
	RoleInstructor:  roleSet(RoleAdmin, RoleInstructor),
	RoleStudent:     roleSet(RoleAdmin, RoleInstructor, RoleStudent, RoleStakeholder),
	RoleStakeholder: roleSet(RoleAdmin, RoleInstructor, RoleStakeholder),
}

// Grants reports whether a user holding role may act at the required level.
func Grants(role, required Role) bool {
	if role == RoleAdmin {
		return true
	}
	allowed, ok := permissionTable[required]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// HasPermission applies Grants to an optional user; no user holds no permission.
func HasPermission(user *User, required Role) bool {
	if user == nil {
		return false
	}
	return Grants(user.Role, required)
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}
