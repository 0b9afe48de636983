package handlers

import (
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// sessionOf returns the request session. A nil session is rejected by the
// services as unauthenticated.
func sessionOf(c *fiber.Ctx) *access.Session {
	return middleware.Session(c)
}
