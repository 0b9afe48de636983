package handlers

import (
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves one content kind; routes mount one per kind.
type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) List(c *fiber.Ctx) error {
	rows, err := h.contentService.ListAll(c.UserContext(), sessionOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(rows))
}

func (h *ContentHandler) Pending(c *fiber.Ctx) error {
	rows, err := h.contentService.ListPending(c.UserContext(), sessionOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(rows))
}

func (h *ContentHandler) Reported(c *fiber.Ctx) error {
	rows, err := h.contentService.ListReported(c.UserContext(), sessionOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(rows))
}

func (h *ContentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	row, err := h.contentService.Get(c.UserContext(), sessionOf(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(row))
}

func (h *ContentHandler) Approve(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.contentService.Approve(c.UserContext(), sessionOf(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(string(h.contentService.Kind()) + " approved"))
}

func (h *ContentHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.contentService.Reject(c.UserContext(), sessionOf(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(string(h.contentService.Kind()) + " rejected"))
}

func (h *ContentHandler) SetStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.contentService.SetStatus(c.UserContext(), sessionOf(c), id, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success("Status updated"))
}

func (h *ContentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.contentService.Delete(c.UserContext(), sessionOf(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success(string(h.contentService.Kind()) + " deleted"))
}
