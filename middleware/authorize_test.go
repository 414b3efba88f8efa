package middleware

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhive/authz"
	"taskhive/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

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
	))
	return db
}

// newTestApp builds a fiber app with the façade wired behind a stub auth
// middleware that injects the given principal
func newTestApp(db *gorm.DB, user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})

	ok := func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}

	app.Get("/orgs/:organizationId", RequirePermissions(db, authz.PermViewResources), ok)
	app.Delete("/orgs/:organizationId", RequirePermissions(db, authz.PermDeleteOrganization), ok)
	app.Get("/teams/:teamId", RequirePermissions(db, authz.PermViewResources), ok)
	app.Get("/teams", RequirePermissions(db, authz.PermViewResources), ok)
	app.Post("/teams", RequirePermissions(db, authz.PermCreateTeam), ok)
	return app
}

func seedOrgWithOwner(t *testing.T, db *gorm.DB) (*models.User, *models.Organization) {
	t.Helper()
	user := &models.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	org := &models.Organization{Title: "org", JoinCode: "CODE123456"}
	require.NoError(t, db.Create(org).Error)
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.OrgRoleOwner,
		Status:         models.MemberStatusActive,
	}).Error)
	return user, org
}

func TestRequirePermissionsAllowsPathParam(t *testing.T) {
	db := setupTestDB(t)
	user, org := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	req := httptest.NewRequest("GET", "/orgs/"+strconv.Itoa(int(org.ID)), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermissionsDeniesNonMember(t *testing.T) {
	db := setupTestDB(t)
	_, org := seedOrgWithOwner(t, db)

	outsider := &models.User{Email: "outsider@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(outsider).Error)
	app := newTestApp(db, outsider)

	req := httptest.NewRequest("GET", "/orgs/"+strconv.Itoa(int(org.ID)), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequirePermissionsEmptyQueryIDIsDenied(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	// organizationId is present but empty: malformed, not "not a member"
	req := httptest.NewRequest("GET", "/teams?organizationId=", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequirePermissionsAbsentIDsAllow(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	// No entity ids anywhere: unscoped action
	req := httptest.NewRequest("GET", "/teams", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermissionsMissingEntityIs404(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	req := httptest.NewRequest("GET", "/teams/9999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRequirePermissionsReadsBody(t *testing.T) {
	db := setupTestDB(t)
	user, org := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	body := strings.NewReader(`{"organizationId": "` + strconv.Itoa(int(org.ID)) + `", "title": "t"}`)
	req := httptest.NewRequest("POST", "/teams", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermissionsInsufficientRole(t *testing.T) {
	db := setupTestDB(t)
	_, org := seedOrgWithOwner(t, db)

	viewer := &models.User{Email: "viewer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(viewer).Error)
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         viewer.ID,
		Role:           models.OrgRoleViewer,
		Status:         models.MemberStatusActive,
	}).Error)
	app := newTestApp(db, viewer)

	// Viewing is fine
	req := httptest.NewRequest("GET", "/orgs/"+strconv.Itoa(int(org.ID)), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Deleting the organization is owner-only
	req = httptest.NewRequest("DELETE", "/orgs/"+strconv.Itoa(int(org.ID)), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequirePermissionsPathParamWinsOverQuery(t *testing.T) {
	db := setupTestDB(t)
	user, org := seedOrgWithOwner(t, db)
	app := newTestApp(db, user)

	// The bogus query value loses to the valid path param
	req := httptest.NewRequest("GET", "/orgs/"+strconv.Itoa(int(org.ID))+"?organizationId=9999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
