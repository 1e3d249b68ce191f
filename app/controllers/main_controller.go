package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

// HandleStart renders the public landing page with the service catalogue
// and the areas we cover.
func HandleStart(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	settings := models.GetBusinessSettings()

	services, err := repository.GetGlobalFactory().GetServiceRepository().GetActive()
	if err != nil {
		services = nil
	}

	bind := fiber.Map{
		"BusinessName": settings.BusinessName,
		"Address":      settings.Address,
		"VatRate":      settings.VatRate.StringFixed(2),
		"Services":     services,
		"ServiceAreas": serviceareas.Resolve(settings.ServiceAreas()),
		"IsLoggedIn":   userCtx.IsLoggedIn,
		"Username":     userCtx.Username,
	}
	for k, v := range flash.Get(c) {
		bind[k] = v
	}

	return c.Render("index", bind)
}

// HandleHealth reports service liveness including the database connection.
func HandleHealth(c *fiber.Ctx) error {
	status := "ok"
	db := database.GetDB()
	if db == nil {
		status = "degraded"
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status})
}
