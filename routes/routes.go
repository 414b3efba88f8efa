package routes

import (
	"taskhive/authz"
	controller "taskhive/controllers"
	"taskhive/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes wires the HTTP surface. Every protected route declares its
// required permission tags inline; the façade middleware extracts entity
// ids and runs the evaluator before the handler executes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	orgController := controller.NewOrganizationController(db, logrus.WithField("component", "organization"))
	projectController := controller.NewProjectController(db, logrus.WithField("component", "project"))
	teamController := controller.NewTeamController(db, logrus.WithField("component", "team"))
	taskController := controller.NewTaskController(db, logrus.WithField("component", "task"))
	commentController := controller.NewCommentController(db, logrus.WithField("component", "comment"))
	timerController := controller.NewTimerController(db, logrus.WithField("component", "timer"))

	// Public auth endpoints (no authentication required)
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Organization routes
	orgs := api.Group("/organizations")
	orgs.Post("/", orgController.Create) // unscoped: no entity ids yet
	orgs.Get("/", orgController.ListMine)
	orgs.Post("/join", middleware.JoinRateLimiter(), orgController.Join)
	orgs.Get("/:organizationId", middleware.RequirePermissions(db, authz.PermViewResources), orgController.Get)
	orgs.Put("/:organizationId", middleware.RequirePermissions(db, authz.PermManageOrganization), orgController.Update)
	orgs.Delete("/:organizationId", middleware.RequirePermissions(db, authz.PermDeleteOrganization), orgController.Delete)
	orgs.Get("/:organizationId/members", middleware.RequirePermissions(db, authz.PermViewResources), orgController.Members)
	orgs.Put("/:organizationId/members/:userId/role", middleware.RequirePermissions(db, authz.PermManageUsers), orgController.ChangeMemberRole)
	orgs.Post("/:organizationId/members/:userId/ban", middleware.RequirePermissions(db, authz.PermManageUsers), orgController.BanMember)
	orgs.Post("/:organizationId/members/:userId/unban", middleware.RequirePermissions(db, authz.PermManageUsers), orgController.UnbanMember)
	orgs.Post("/:organizationId/transfer-ownership", middleware.RequirePermissions(db, authz.PermTransferOwnership), orgController.TransferOwnership)
	orgs.Post("/:organizationId/leave", middleware.RequirePermissions(db), orgController.Leave)

	// Project routes; organizationId arrives in body (create) or query (list)
	projects := api.Group("/projects")
	projects.Post("/", middleware.RequirePermissions(db, authz.PermCreateProject), projectController.Create)
	projects.Get("/", middleware.RequirePermissions(db, authz.PermViewResources), projectController.List)
	projects.Get("/:projectId", middleware.RequirePermissions(db, authz.PermViewResources), projectController.Get)
	projects.Put("/:projectId", middleware.RequirePermissions(db, authz.PermEditResources), projectController.Update)
	projects.Delete("/:projectId", middleware.RequirePermissions(db, authz.PermEditResources), projectController.Delete)
	projects.Post("/:projectId/members", middleware.RequirePermissions(db, authz.PermEditResources), projectController.AddMember)
	projects.Delete("/:projectId/members/:userId", middleware.RequirePermissions(db, authz.PermEditResources), projectController.RemoveMember)
	projects.Post("/:projectId/leave", middleware.RequirePermissions(db), projectController.Leave)
	projects.Post("/:projectId/transfer-managership", middleware.RequirePermissions(db), projectController.TransferManagership)

	// Team routes
	teams := api.Group("/teams")
	teams.Post("/", middleware.RequirePermissions(db, authz.PermCreateTeam), teamController.Create)
	teams.Get("/", middleware.RequirePermissions(db, authz.PermViewResources), teamController.List)
	teams.Get("/:teamId", middleware.RequirePermissions(db, authz.PermViewResources), teamController.Get)
	teams.Put("/:teamId", middleware.RequirePermissions(db, authz.PermEditResources), teamController.Update)
	teams.Delete("/:teamId", middleware.RequirePermissions(db, authz.PermEditResources), teamController.Delete)
	teams.Post("/:teamId/project", middleware.RequirePermissions(db, authz.PermEditResources), teamController.LinkProject)
	teams.Delete("/:teamId/project", middleware.RequirePermissions(db, authz.PermEditResources), teamController.UnlinkProject)
	teams.Post("/:teamId/members", middleware.RequirePermissions(db, authz.PermManageTeamUsers), teamController.AddMember)
	teams.Delete("/:teamId/members/:userId", middleware.RequirePermissions(db, authz.PermManageTeamUsers), teamController.RemoveMember)
	teams.Post("/:teamId/leave", middleware.RequirePermissions(db), teamController.Leave)
	teams.Post("/:teamId/transfer-leadership", middleware.RequirePermissions(db), teamController.TransferLeadership)

	// Task routes; projectId (and organizationId) arrive in body or query
	tasks := api.Group("/tasks")
	tasks.Post("/", middleware.RequirePermissions(db, authz.PermEditResources), taskController.Create)
	tasks.Get("/", middleware.RequirePermissions(db, authz.PermViewResources), taskController.List)
	tasks.Get("/:taskId", middleware.RequirePermissions(db, authz.PermViewResources), taskController.Get)
	tasks.Put("/:taskId", middleware.RequirePermissions(db, authz.PermEditResources), taskController.Update)
	tasks.Delete("/:taskId", middleware.RequirePermissions(db, authz.PermEditResources), taskController.Delete)
	tasks.Put("/:taskId/assignee", middleware.RequirePermissions(db, authz.PermEditResources), taskController.Assign)

	// Comments and timers live under a task
	tasks.Post("/:taskId/comments", middleware.RequirePermissions(db, authz.PermViewResources), commentController.Create)
	tasks.Get("/:taskId/comments", middleware.RequirePermissions(db, authz.PermViewResources), commentController.List)
	tasks.Put("/:taskId/comments/:commentId", middleware.RequirePermissions(db, authz.PermViewResources), commentController.Update)
	tasks.Delete("/:taskId/comments/:commentId", middleware.RequirePermissions(db, authz.PermViewResources), commentController.Delete)

	tasks.Post("/:taskId/timers/start", middleware.RequirePermissions(db, authz.PermViewResources), timerController.Start)
	tasks.Post("/:taskId/timers/stop", middleware.RequirePermissions(db, authz.PermViewResources), timerController.Stop)
	tasks.Get("/:taskId/timers", middleware.RequirePermissions(db, authz.PermViewResources), timerController.List)

	logrus.Info("routes initialized")
}
