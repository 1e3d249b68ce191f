package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
)

type settingsUpdateRequest struct {
	BusinessName   *string          `json:"business_name"`
	RegNumber      *string          `json:"reg_number"`
	VatRegistered  *bool            `json:"vat_registered"`
	VatNumber      *string          `json:"vat_number"`
	VatRate        *decimal.Decimal `json:"vat_rate"`
	Address        *string          `json:"address"`
	BankingDetails *string          `json:"banking_details"`
	ServiceAreas   []string         `json:"service_areas"`
}

// HandlePublicSettings exposes the subset of settings the public site needs:
// identity, VAT rate and the service-area list for the booking form.
func HandlePublicSettings(c *fiber.Ctx) error {
	settings := models.GetBusinessSettings()

	return c.JSON(fiber.Map{
		"business_name":  settings.BusinessName,
		"vat_registered": settings.VatRegistered,
		"vat_rate":       settings.VatRate,
		"address":        settings.Address,
		"service_areas":  serviceareas.Resolve(settings.ServiceAreas()),
	})
}

// HandleGetSettings returns the full settings row for the admin screen.
func HandleGetSettings(c *fiber.Ctx) error {
	settings := models.GetBusinessSettings()
	return c.JSON(fiber.Map{
		"settings":      settings,
		"service_areas": serviceareas.Resolve(settings.ServiceAreas()),
	})
}

// HandleUpdateSettings edits the business settings. The numbering counters
// are deliberately not editable here; they only move when documents are
// created.
func HandleUpdateSettings(c *fiber.Ctx) error {
	var req settingsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	settings := *models.GetBusinessSettings()

	if req.BusinessName != nil {
		name := strings.TrimSpace(*req.BusinessName)
		if len(name) < 2 {
			return badRequest(c, "Enter a business name")
		}
		settings.BusinessName = name
	}
	if req.RegNumber != nil {
		settings.RegNumber = strings.TrimSpace(*req.RegNumber)
	}
	if req.VatRegistered != nil {
		settings.VatRegistered = *req.VatRegistered
	}
	if req.VatNumber != nil {
		settings.VatNumber = strings.TrimSpace(*req.VatNumber)
	}
	if req.VatRate != nil {
		if req.VatRate.IsNegative() || req.VatRate.GreaterThan(decimal.NewFromInt(1)) {
			return badRequest(c, "VAT rate must be between 0 and 1")
		}
		settings.VatRate = *req.VatRate
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if len(address) < 5 {
			return badRequest(c, "Enter the business address")
		}
		settings.Address = address
	}
	if req.BankingDetails != nil {
		banking := strings.TrimSpace(*req.BankingDetails)
		if len(banking) < 5 {
			return badRequest(c, "Enter the banking details")
		}
		settings.BankingDetails = banking
	}
	if req.ServiceAreas != nil {
		if err := settings.SetServiceAreas(req.ServiceAreas); err != nil {
			return badRequest(c, "Invalid service area list")
		}
	}

	if err := models.SaveBusinessSettings(database.GetDB(), &settings); err != nil {
		return internalError(c, "Failed to save settings")
	}

	return c.JSON(fiber.Map{
		"settings":      models.GetBusinessSettings(),
		"service_areas": serviceareas.Resolve(settings.ServiceAreas()),
	})
}
