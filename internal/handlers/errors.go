package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{access.ErrUnauthenticated, fiber.StatusUnauthorized, "unauthenticated"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid_credentials"},
	{access.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{services.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{services.ErrInvalidStatus, fiber.StatusBadRequest, "invalid_status"},
	{services.ErrInvalidRole, fiber.StatusBadRequest, "invalid_role"},
	{services.ErrInvalidInput, fiber.StatusBadRequest, "invalid_input"},
	{services.ErrHasDependents, fiber.StatusConflict, "has_dependents"},
}

// respondError maps a service error onto its HTTP status. Anything not in the
// table is a 500 whose detail stays in the logs.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.Fail(e.code, err.Error()))
		}
	}

	attrs := []any{
		"request_id", requestID(c),
		"action", c.Method() + " " + c.Route().Path,
		"error", err.Error(),
	}
	if sess := sessionOf(c); sess != nil {
		attrs = append(attrs, "moderator_id", strconv.FormatUint(uint64(sess.ModeratorID), 10))
	}
	slog.Error("request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.Route().Path)
			hub.CaptureException(err)
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("internal", "Internal server error"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("invalid_input", msg))
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
