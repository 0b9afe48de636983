package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything Setup mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Directory *handlers.DirectoryHandler
	Posts     *handlers.ContentHandler
	Spotted   *handlers.ContentHandler
	Users     *handlers.UserHandler
	Stats     *handlers.StatsHandler
	Hooks     *handlers.HookHandler
}

func Setup(app *fiber.App, cfg *config.Config, resolver middleware.SessionResolver, h *Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Get("/health", h.Health.Check)

	// Login rate limit per IP
	api.Post("/login", limiter.New(limiter.Config{
		Max:               cfg.LoginRate,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Fail("rate_limited", "Too many login attempts"))
		},
	}), h.Auth.Login)

	// Ingestion hooks are only reachable with a configured token
	if cfg.HookToken != "" && h.Hooks != nil {
		hooks := api.Group("/hooks", middleware.HookTokenRequired(cfg))
		hooks.Post("/content", h.Hooks.SubmitContent)
		hooks.Post("/reports", h.Hooks.RecordReport)
	}

	// Everything below needs a live moderator session
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.SessionRequired(resolver))

	protected.Get("/verify", h.Auth.Verify)
	protected.Post("/logout", h.Auth.Logout)

	protected.Get("/cities", h.Directory.ListCities)
	protected.Post("/cities", h.Directory.CreateCity)
	protected.Get("/cities/:id", h.Directory.GetCity)
	protected.Put("/cities/:id", h.Directory.UpdateCity)
	protected.Delete("/cities/:id", h.Directory.DeleteCity)

	protected.Get("/schools", h.Directory.ListSchools)
	protected.Post("/schools", h.Directory.CreateSchool)
	protected.Put("/schools/:id", h.Directory.UpdateSchool)
	protected.Delete("/schools/:id", h.Directory.DeleteSchool)

	mountContent(protected.Group("/posts"), h.Posts)
	mountContent(protected.Group("/spotted"), h.Spotted)

	protected.Get("/users/search", h.Users.Search)
	protected.Get("/users/:id", h.Users.Get)
	protected.Put("/users/:id/role", h.Users.SetRole)

	protected.Get("/statistics", h.Stats.Overview)
}

func mountContent(r fiber.Router, h *handlers.ContentHandler) {
	r.Get("/", h.List)
	r.Get("/pending", h.Pending)
	r.Get("/reported", h.Reported)
	r.Get("/:id", h.Get)
	r.Put("/:id/approve", h.Approve)
	r.Put("/:id/reject", h.Reject)
	r.Put("/:id/status", h.SetStatus)
	r.Delete("/:id", h.Delete)
}
