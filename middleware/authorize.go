package middleware

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhive/authz"
	"taskhive/models"
)

// RequirePermissions is the route authorization boundary. Each protected
// route declares its required permission tags explicitly at registration;
// the middleware extracts organizationId/teamId/projectId from the
// request (path params, then query, then body - first hit wins per key),
// runs the access evaluator and rejects the request on deny. The wrapped
// handler never executes on a denial.
func RequirePermissions(db *gorm.DB, perms ...authz.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		var body map[string]interface{}
		if len(c.Body()) > 0 {
			// Non-JSON bodies carry no entity refs; ignore parse failures
			_ = c.BodyParser(&body)
		}

		refs := authz.EntityRefs{
			OrganizationID: extractRef(c, body, "organizationId"),
			TeamID:         extractRef(c, body, "teamId"),
			ProjectID:      extractRef(c, body, "projectId"),
		}

		if err := authz.Evaluate(db, user.ID, refs, perms); err != nil {
			if ae, ok := authz.AsError(err); ok {
				logrus.WithFields(logrus.Fields{
					"user_id": user.ID,
					"path":    c.Path(),
					"scope":   ae.Scope,
					"kind":    ae.Kind.String(),
					"reason":  ae.Reason,
				}).Warn("request denied")
				if ae.Kind == authz.KindEntityNotFound {
					return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
						"error": ae.Reason,
					})
				}
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": ae.Reason,
				})
			}
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": user.ID,
				"path":    c.Path(),
			}).Error("authorization check failed")
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("error_type", "authorization_store_failure")
				scope.SetExtra("path", c.Path())
				sentry.CaptureException(err)
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Authorization check failed",
			})
		}

		return c.Next()
	}
}

// extractRef looks for an entity id by key. Path params win over query
// parameters, which win over body fields. The returned pointer is nil
// only when the key is absent everywhere; a present-but-empty value is
// returned as an empty string so the evaluator can reject it.
func extractRef(c *fiber.Ctx, body map[string]interface{}, key string) *string {
	if v := c.Params(key); v != "" {
		return &v
	}
	if c.Context().QueryArgs().Has(key) {
		v := c.Query(key)
		return &v
	}
	if body != nil {
		if raw, ok := body[key]; ok {
			v := stringifyRef(raw)
			return &v
		}
	}
	return nil
}

func stringifyRef(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
