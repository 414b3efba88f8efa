package controller

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
	"taskhive/utils"
)

// currentUser returns the authenticated principal stored by the JWT middleware
func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

// respondGuardError maps a mutation-guard failure onto the wire: denials
// become 403 (404 for missing entities) carrying the reason, store
// failures become 500 and are never presented as a permission decision.
func respondGuardError(c *fiber.Ctx, logger *logrus.Entry, err error) error {
	if ae, ok := authz.AsError(err); ok {
		status := fiber.StatusForbidden
		if ae.Kind == authz.KindEntityNotFound {
			status = fiber.StatusNotFound
		}
		logger.WithFields(logrus.Fields{
			"kind":   ae.Kind.String(),
			"scope":  ae.Scope,
			"reason": ae.Reason,
		}).Warn("mutation rejected")
		return c.Status(status).JSON(fiber.Map{
			"error": ae.Reason,
		})
	}
	logger.WithError(err).Error("store access failed")
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", "store_failure")
		scope.SetExtra("path", c.Path())
		sentry.CaptureException(err)
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// loadScopedTask fetches the task from the path and cross-checks it
// against the projectId the façade authorized, so a caller cannot
// authorize one project and operate on another project's task.
func loadScopedTask(db *gorm.DB, c *fiber.Ctx) (*models.Task, error) {
	taskID := utils.ParseUint(c.Params("taskId"))
	projectID := utils.ParseUint(c.Query("projectId"))

	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &authz.Error{
				Kind:   authz.KindEntityNotFound,
				Scope:  "project",
				Reason: "task does not exist",
			}
		}
		return nil, err
	}
	if task.ProjectID != projectID {
		return nil, &authz.Error{
			Kind:   authz.KindEntityNotFound,
			Scope:  "project",
			Reason: "task does not exist",
		}
	}
	return &task, nil
}
