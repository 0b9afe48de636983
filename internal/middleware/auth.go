package middleware

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

// SessionResolver turns verified token claims into the session of the
// current request.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims jwt.MapClaims) (*access.Session, error)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("unauthenticated", "Unauthorized: invalid or expired token"))
}

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// SessionRequired must run after JWTProtected. It resolves the moderator
// behind the token on every request and stores the session in Locals.
func SessionRequired(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}

		sess, err := resolver.ResolveSession(c.UserContext(), claims)
		if errors.Is(err, access.ErrUnauthenticated) {
			return unauthorized(c)
		}
		if err != nil {
			return err
		}

		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// Session returns the session resolved for this request, or nil.
func Session(c *fiber.Ctx) *access.Session {
	sess, _ := c.Locals(sessionKey).(*access.Session)
	return sess
}
