package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhive/models"
)

func TestRolePermissions(t *testing.T) {
	// Owner holds everything, including the owner-only tags
	assert.True(t, RoleHas(models.OrgRoleOwner, PermDeleteOrganization))
	assert.True(t, RoleHas(models.OrgRoleOwner, PermTransferOwnership))
	assert.True(t, RoleHas(models.OrgRoleOwner, PermManageUsers))

	// Admin manages the org but cannot delete it or move ownership
	assert.True(t, RoleHas(models.OrgRoleAdmin, PermCreateTeam))
	assert.True(t, RoleHas(models.OrgRoleAdmin, PermCreateProject))
	assert.True(t, RoleHas(models.OrgRoleAdmin, PermManageUsers))
	assert.False(t, RoleHas(models.OrgRoleAdmin, PermDeleteOrganization))
	assert.False(t, RoleHas(models.OrgRoleAdmin, PermTransferOwnership))

	// Member works on resources but does not create teams or manage users
	assert.True(t, RoleHas(models.OrgRoleMember, PermViewResources))
	assert.True(t, RoleHas(models.OrgRoleMember, PermEditResources))
	assert.False(t, RoleHas(models.OrgRoleMember, PermCreateTeam))
	assert.False(t, RoleHas(models.OrgRoleMember, PermManageUsers))

	// Team roster management is member-level; a team leader is usually a
	// plain org member
	assert.True(t, RoleHas(models.OrgRoleMember, PermManageTeamUsers))
	assert.True(t, RoleHas(models.OrgRoleAdmin, PermManageTeamUsers))
	assert.False(t, RoleHas(models.OrgRoleViewer, PermManageTeamUsers))

	// Viewer is read-only
	assert.True(t, RoleHas(models.OrgRoleViewer, PermViewResources))
	assert.False(t, RoleHas(models.OrgRoleViewer, PermEditResources))
}

func TestUnknownRoleHasEmptySet(t *testing.T) {
	assert.False(t, RoleHas(models.OrgRole("superuser"), PermViewResources))
}
