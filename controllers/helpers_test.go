package controller

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"taskhive/authz"
)

// captureSentryEvents routes events into a slice instead of the wire
func captureSentryEvents(t *testing.T) *[]*sentry.Event {
	t.Helper()
	var events []*sentry.Event
	err := sentry.Init(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)
	return &events
}

func TestRespondGuardErrorReportsStoreFailures(t *testing.T) {
	events := captureSentryEvents(t)

	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondGuardError(c, logrus.WithField("component", "test"), errors.New("connection reset"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	require.Len(t, *events, 1)
	require.Equal(t, "store_failure", (*events)[0].Tags["error_type"])
}

func TestRespondGuardErrorDenialsStayOutOfSentry(t *testing.T) {
	events := captureSentryEvents(t)

	app := fiber.New()
	app.Get("/denied", func(c *fiber.Ctx) error {
		return respondGuardError(c, logrus.WithField("component", "test"), &authz.Error{
			Kind:   authz.KindInsufficientPermission,
			Scope:  "organization",
			Reason: "insufficient role permissions",
		})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/denied", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, *events)
}
