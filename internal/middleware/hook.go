package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// HookTokenRequired guards the ingestion hooks with the shared X-Hook-Token.
func HookTokenRequired(cfg *config.Config) fiber.Handler {
	want := []byte(cfg.HookToken)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get("X-Hook-Token"))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("unauthenticated", "Invalid hook token"))
		}
		return c.Next()
	}
}
