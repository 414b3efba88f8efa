package authz

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhive/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and shared
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamProject{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createOrg(t *testing.T, db *gorm.DB, ownerID uint) *models.Organization {
	t.Helper()
	org := models.Organization{
		Title:    "org",
		JoinCode: "JOIN-" + strconv.FormatUint(uint64(ownerID), 10),
	}
	require.NoError(t, db.Create(&org).Error)
	addOrgMember(t, db, org.ID, ownerID, models.OrgRoleOwner, models.MemberStatusActive)
	return &org
}

func addOrgMember(t *testing.T, db *gorm.DB, orgID, userID uint, role models.OrgRole, status models.MemberStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		Status:         status,
	}).Error)
}

func createTeam(t *testing.T, db *gorm.DB, orgID, leaderID uint) *models.Team {
	t.Helper()
	team := models.Team{
		OrganizationID: orgID,
		Title:          "team",
	}
	require.NoError(t, db.Create(&team).Error)
	addTeamMember(t, db, team.ID, leaderID, models.TeamRoleLeader, models.MemberStatusActive)
	return &team
}

func addTeamMember(t *testing.T, db *gorm.DB, teamID, userID uint, role models.TeamRole, status models.MemberStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
		Status: status,
	}).Error)
}

func createProject(t *testing.T, db *gorm.DB, orgID, managerID uint) *models.Project {
	t.Helper()
	project := models.Project{
		OrganizationID: orgID,
		Title:          "project",
	}
	require.NoError(t, db.Create(&project).Error)
	addProjectMember(t, db, project.ID, managerID, models.ProjectRoleManager, models.MemberStatusActive)
	return &project
}

func addProjectMember(t *testing.T, db *gorm.DB, projectID, userID uint, role models.ProjectRole, status models.MemberStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Status:    status,
	}).Error)
}

func idRef(id uint) *string {
	s := strconv.FormatUint(uint64(id), 10)
	return &s
}

func strRef(s string) *string {
	return &s
}

// requireKind asserts err is an authorization denial of the given kind
func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	ae, ok := AsError(err)
	require.True(t, ok, "expected an authz denial, got %v", err)
	require.Equal(t, kind, ae.Kind, "expected %s, got %s (%s)", kind, ae.Kind, ae.Reason)
	return ae
}

func orgRoleOf(t *testing.T, db *gorm.DB, orgID, userID uint) models.OrgRole {
	t.Helper()
	member, found, err := ResolveOrgMembership(db, userID, orgID)
	require.NoError(t, err)
	require.True(t, found)
	return member.Role
}

func countOrgOwners(t *testing.T, db *gorm.DB, orgID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND role = ? AND status = ?",
			orgID, models.OrgRoleOwner, models.MemberStatusActive).
		Count(&count).Error)
	return count
}

func countTeamLeaders(t *testing.T, db *gorm.DB, teamID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ? AND status = ?",
			teamID, models.TeamRoleLeader, models.MemberStatusActive).
		Count(&count).Error)
	return count
}

func countProjectManagers(t *testing.T, db *gorm.DB, projectID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND role = ? AND status = ?",
			projectID, models.ProjectRoleManager, models.MemberStatusActive).
		Count(&count).Error)
	return count
}
