package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
)

type serviceRequest struct {
	Name                   string `json:"name"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
	Active                 *bool  `json:"active"`
}

// HandleListServices returns the active service catalog for the booking form.
func HandleListServices(c *fiber.Ctx) error {
	services, err := repository.GetGlobalFactory().GetServiceRepository().GetActive()
	if err != nil {
		return internalError(c, "Failed to load services")
	}
	return c.JSON(fiber.Map{"services": services})
}

// HandleAdminListServices returns the full catalog including inactive rows.
func HandleAdminListServices(c *fiber.Ctx) error {
	services, err := repository.GetGlobalFactory().GetServiceRepository().GetAll()
	if err != nil {
		return internalError(c, "Failed to load services")
	}
	return c.JSON(fiber.Map{"services": services})
}

// HandleCreateService adds a catalog entry.
func HandleCreateService(c *fiber.Ctx) error {
	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "Enter a service name")
	}
	if req.DefaultDurationMinutes <= 0 {
		return badRequest(c, "Duration must be greater than zero")
	}

	service := &models.Service{
		Name:                   name,
		DefaultDurationMinutes: req.DefaultDurationMinutes,
		Active:                 true,
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := repository.GetGlobalFactory().GetServiceRepository().Create(service); err != nil {
		return internalError(c, "Failed to create service")
	}
	return c.Status(fiber.StatusCreated).JSON(service)
}

// HandleUpdateService edits a catalog entry. Deactivating hides it from the
// booking form without touching historical bookings.
func HandleUpdateService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid service id")
	}

	repo := repository.GetGlobalFactory().GetServiceRepository()
	service, err := repo.GetByID(uint(id))
	if err != nil {
		return notFound(c, "Service not found")
	}

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		service.Name = name
	}
	if req.DefaultDurationMinutes != 0 {
		if req.DefaultDurationMinutes < 0 {
			return badRequest(c, "Duration must be greater than zero")
		}
		service.DefaultDurationMinutes = req.DefaultDurationMinutes
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := repo.Update(service); err != nil {
		return internalError(c, "Failed to update service")
	}
	return c.JSON(service)
}
