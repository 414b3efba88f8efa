package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskhive/models"
)

func TestBanForcesViewerRole(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	admin := createUser(t, db, "admin@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, admin.ID, models.OrgRoleAdmin, models.MemberStatusActive)

	require.NoError(t, BanOrgMember(db, org.ID, owner.ID, admin.ID))

	member, found, err := ResolveOrgMembership(db, admin.ID, org.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.MemberStatusBanned, member.Status)
	require.Equal(t, models.OrgRoleViewer, member.Role)

	// Unban restores status only; the pre-ban admin role is gone
	require.NoError(t, UnbanOrgMember(db, org.ID, admin.ID))

	member, _, err = ResolveOrgMembership(db, admin.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, models.MemberStatusActive, member.Status)
	require.Equal(t, models.OrgRoleViewer, member.Role)
}

func TestBanOwnerRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	admin := createUser(t, db, "admin@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, admin.ID, models.OrgRoleAdmin, models.MemberStatusActive)

	err := BanOrgMember(db, org.ID, admin.ID, owner.ID)
	requireKind(t, err, KindInvariantViolation)

	member, _, err := ResolveOrgMembership(db, owner.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrgRoleOwner, member.Role)
	require.Equal(t, models.MemberStatusActive, member.Status)
}

func TestBanSelfRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	admin := createUser(t, db, "admin@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, admin.ID, models.OrgRoleAdmin, models.MemberStatusActive)

	err := BanOrgMember(db, org.ID, admin.ID, admin.ID)
	requireKind(t, err, KindInvariantViolation)
}

func TestUnbanRequiresBanned(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, member.ID, models.OrgRoleMember, models.MemberStatusActive)

	err := UnbanOrgMember(db, org.ID, member.ID)
	requireKind(t, err, KindInvariantViolation)
}

func TestChangeOrgMemberRole(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, member.ID, models.OrgRoleViewer, models.MemberStatusActive)

	require.NoError(t, ChangeOrgMemberRole(db, org.ID, member.ID, models.OrgRoleAdmin))
	require.Equal(t, models.OrgRoleAdmin, orgRoleOf(t, db, org.ID, member.ID))

	// Ownership is never assignable through role changes
	err := ChangeOrgMemberRole(db, org.ID, member.ID, models.OrgRoleOwner)
	requireKind(t, err, KindInvariantViolation)

	// The owner's row is untouchable through this path
	err = ChangeOrgMemberRole(db, org.ID, owner.ID, models.OrgRoleMember)
	requireKind(t, err, KindInvariantViolation)
	require.Equal(t, models.OrgRoleOwner, orgRoleOf(t, db, org.ID, owner.ID))
	require.EqualValues(t, 1, countOrgOwners(t, db, org.ID))

	err = ChangeOrgMemberRole(db, org.ID, member.ID, models.OrgRole("superuser"))
	requireKind(t, err, KindMalformedReference)
}

func TestChangeRoleOfBannedMemberRejected(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	banned := createUser(t, db, "banned@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, banned.ID, models.OrgRoleViewer, models.MemberStatusBanned)

	err := ChangeOrgMemberRole(db, org.ID, banned.ID, models.OrgRoleAdmin)
	requireKind(t, err, KindInvariantViolation)
}

func TestLeaveOrganization(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, member.ID, models.OrgRoleMember, models.MemberStatusActive)

	// The owner must transfer before leaving
	requireKind(t, LeaveOrganization(db, org.ID, owner.ID), KindInvariantViolation)

	require.NoError(t, LeaveOrganization(db, org.ID, member.ID))
	_, found, err := ResolveOrgMembership(db, member.ID, org.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoveTeamMember(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	m := createUser(t, db, "member@example.com")
	org := createOrg(t, db, owner.ID)
	addOrgMember(t, db, org.ID, m.ID, models.OrgRoleMember, models.MemberStatusActive)
	team := createTeam(t, db, org.ID, owner.ID)
	addTeamMember(t, db, team.ID, m.ID, models.TeamRoleMember, models.MemberStatusActive)

	require.NoError(t, RemoveTeamMember(db, team.ID, m.ID))
	_, found, err := ResolveTeamMembership(db, m.ID, team.ID)
	require.NoError(t, err)
	require.False(t, found)

	requireKind(t, RemoveTeamMember(db, team.ID, m.ID), KindNotAMember)
}

func TestRemoveLastTeamMemberDeletesTeam(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	org := createOrg(t, db, owner.ID)
	team := createTeam(t, db, org.ID, owner.ID)
	project := createProject(t, db, org.ID, owner.ID)
	require.NoError(t, db.Create(&models.TeamProject{TeamID: team.ID, ProjectID: project.ID}).Error)

	// The sole member is the leader; leaving dissolves the team
	require.NoError(t, RemoveTeamMember(db, team.ID, owner.ID))

	var teamCount int64
	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&teamCount).Error)
	require.Zero(t, teamCount)

	var linkCount int64
	require.NoError(t, db.Model(&models.TeamProject{}).Where("team_id = ?", team.ID).Count(&linkCount).Error)
	require.Zero(t, linkCount)
}

func TestEndToEndOwnershipScenario(t *testing.T) {
	db := setupTestDB(t)

	// User A creates organization O and becomes owner
	a := createUser(t, db, "a@example.com")
	org := createOrg(t, db, a.ID)

	// User B joins via join code and becomes viewer
	b := createUser(t, db, "b@example.com")
	addOrgMember(t, db, org.ID, b.ID, models.OrgRoleViewer, models.MemberStatusActive)

	refs := EntityRefs{OrganizationID: idRef(org.ID)}

	// As viewer, B cannot create a team
	requireKind(t, Evaluate(db, b.ID, refs, []Permission{PermCreateTeam}), KindInsufficientPermission)

	// A promotes B to admin; B can now create a team
	require.NoError(t, ChangeOrgMemberRole(db, org.ID, b.ID, models.OrgRoleAdmin))
	require.NoError(t, Evaluate(db, b.ID, refs, []Permission{PermCreateTeam}))

	// B deleting O is still owner-only
	requireKind(t, Evaluate(db, b.ID, refs, []Permission{PermDeleteOrganization}), KindInsufficientPermission)

	// A transfers ownership to B
	require.NoError(t, TransferOwnership(db, org.ID, a.ID, b.ID))
	require.Equal(t, models.OrgRoleMember, orgRoleOf(t, db, org.ID, a.ID))
	require.Equal(t, models.OrgRoleOwner, orgRoleOf(t, db, org.ID, b.ID))

	// A's second transfer attempt hits "already owner" and changes nothing
	err := TransferOwnership(db, org.ID, a.ID, b.ID)
	ae := requireKind(t, err, KindInvariantViolation)
	require.Contains(t, ae.Reason, "already owner")
	require.EqualValues(t, 1, countOrgOwners(t, db, org.ID))
}
