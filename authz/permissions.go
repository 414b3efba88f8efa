package authz

import "taskhive/models"

// Permission is an opaque capability tag checked after the hierarchy walk
type Permission string

const (
	PermViewResources      Permission = "viewResources"
	PermEditResources      Permission = "editResources"
	PermCreateProject      Permission = "createProject"
	PermCreateTeam         Permission = "createTeam"
	PermManageUsers        Permission = "manageUsers"
	PermManageTeamUsers    Permission = "manageTeamUsers"
	PermManageOrganization Permission = "manageOrganization"
	PermDeleteOrganization Permission = "deleteOrganization"
	PermTransferOwnership  Permission = "transferOwnership"
)

// rolePermissions maps each organization role to its permission set.
// Initialized once, never mutated. No role inherits another role's entry:
// every grant is spelled out per role.
var rolePermissions = map[models.OrgRole]map[Permission]struct{}{
	models.OrgRoleOwner: permSet(
		PermViewResources,
		PermEditResources,
		PermCreateProject,
		PermCreateTeam,
		PermManageUsers,
		PermManageTeamUsers,
		PermManageOrganization,
		PermDeleteOrganization,
		PermTransferOwnership,
	),
	models.OrgRoleAdmin: permSet(
		PermViewResources,
		PermEditResources,
		PermCreateProject,
		PermCreateTeam,
		PermManageUsers,
		PermManageTeamUsers,
		PermManageOrganization,
	),
	// Members carry manageTeamUsers so a member-level team leader can
	// reach the roster endpoints; the leader check in the handler is the
	// real gate.
	models.OrgRoleMember: permSet(
		PermViewResources,
		PermEditResources,
		PermManageTeamUsers,
	),
	models.OrgRoleViewer: permSet(
		PermViewResources,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// RoleHas reports whether role grants perm. A role with no entry in the
// matrix yields the empty set.
func RoleHas(role models.OrgRole, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}
