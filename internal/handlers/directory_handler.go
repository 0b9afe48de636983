package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

func NewDirectoryHandler(directoryService *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) ListCities(c *fiber.Ctx) error {
	cities, err := h.directoryService.ListCities(c.UserContext(), sessionOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(cities))
}

func (h *DirectoryHandler) GetCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	city, err := h.directoryService.GetCity(c.UserContext(), sessionOf(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(city))
}

func (h *DirectoryHandler) CreateCity(c *fiber.Ctx) error {
	var req dto.CityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	city, err := h.directoryService.CreateCity(c.UserContext(), sessionOf(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(city))
}

func (h *DirectoryHandler) UpdateCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req dto.CityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	city, err := h.directoryService.UpdateCity(c.UserContext(), sessionOf(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(city))
}

func (h *DirectoryHandler) DeleteCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.directoryService.DeleteCity(c.UserContext(), sessionOf(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success("City deleted"))
}

// ListSchools accepts an optional city_id filter.
func (h *DirectoryHandler) ListSchools(c *fiber.Ctx) error {
	var cityID *uint
	if raw := c.Query("city_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid city_id")
		}
		v := uint(id)
		cityID = &v
	}

	schools, err := h.directoryService.ListSchools(c.UserContext(), sessionOf(c), cityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(schools))
}

func (h *DirectoryHandler) CreateSchool(c *fiber.Ctx) error {
	var req dto.SchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	school, err := h.directoryService.CreateSchool(c.UserContext(), sessionOf(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(school))
}

func (h *DirectoryHandler) UpdateSchool(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req dto.SchoolUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	school, err := h.directoryService.UpdateSchool(c.UserContext(), sessionOf(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(school))
}

func (h *DirectoryHandler) DeleteSchool(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.directoryService.DeleteSchool(c.UserContext(), sessionOf(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.Success("School deleted"))
}
