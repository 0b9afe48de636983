package handlers

import (
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	rows, err := h.userService.Search(c.UserContext(), sessionOf(c), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(rows))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	row, err := h.userService.Get(c.UserContext(), sessionOf(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(row))
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	row, err := h.userService.SetRole(c.UserContext(), sessionOf(c), id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(row))
}
