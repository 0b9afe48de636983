package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// HookHandler receives new content and end-user reports from the community
// app. Requests are authenticated by HookTokenRequired, not by a session.
type HookHandler struct {
	engines map[models.ContentKind]*services.ContentService
}

func NewHookHandler(engines ...*services.ContentService) *HookHandler {
	h := &HookHandler{engines: make(map[models.ContentKind]*services.ContentService, len(engines))}
	for _, e := range engines {
		h.engines[e.Kind()] = e
	}
	return h
}

func (h *HookHandler) engine(kind string) (*services.ContentService, bool) {
	e, ok := h.engines[models.ContentKind(kind)]
	return e, ok
}

func (h *HookHandler) SubmitContent(c *fiber.Ctx) error {
	var req dto.SubmitContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid hook payload")
	}
	engine, ok := h.engine(req.Kind)
	if !ok {
		return badRequest(c, "kind must be one of: post, spotted")
	}

	row, err := engine.Submit(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	slog.Info("content ingested", "kind", req.Kind, "item_id", row.ID, "creator_id", req.CreatorID)
	return c.Status(fiber.StatusCreated).JSON(dto.OK(row))
}

func (h *HookHandler) RecordReport(c *fiber.Ctx) error {
	var req dto.ReportContentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid hook payload")
	}
	engine, ok := h.engine(req.Kind)
	if !ok {
		return badRequest(c, "kind must be one of: post, spotted")
	}
	if req.ItemID == 0 {
		return badRequest(c, "item_id is required")
	}

	if err := engine.RecordReport(c.UserContext(), req.ItemID, req.ReporterID, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Success("Report recorded"))
}
