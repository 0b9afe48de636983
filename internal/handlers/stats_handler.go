package handlers

import (
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	stats, err := h.statsService.Overview(c.UserContext(), sessionOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(stats))
}
