package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

type profileUpdateRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	StreetAddress *string `json:"street_address"`
	Area          *string `json:"area"`
}

// HandleGetProfile returns the authenticated user's account details.
func HandleGetProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "User not found")
		}
		return internalError(c, "Failed to load user")
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"phone":    user.Phone,
		"address":  user.Address,
		"is_admin": user.IsAdmin(),
	})
}

// HandleUpdateProfile updates name, phone and address. Fields omitted from
// the request keep their current value.
func HandleUpdateProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return notFound(c, "User not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return badRequest(c, "Enter your full name")
		}
		user.Name = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != "" && len(phone) < 7 {
			return badRequest(c, "Enter a valid phone number")
		}
		user.Phone = phone
	}
	if req.StreetAddress != nil {
		street := strings.TrimSpace(*req.StreetAddress)
		if street == "" {
			user.Address = ""
		} else {
			if len(street) < 4 {
				return badRequest(c, "Enter street name and number")
			}
			area := ""
			if req.Area != nil {
				area = strings.TrimSpace(*req.Area)
			}
			if area == "" {
				return badRequest(c, "Select an area")
			}
			areas := serviceareas.Resolve(models.GetBusinessSettings().ServiceAreas())
			if !serviceareas.Contains(areas, area) {
				return badRequest(c, "Select an area from the list")
			}
			user.Address = serviceareas.ComposeAddress(street, area)
		}
	}

	if err := repo.Update(user); err != nil {
		return internalError(c, "Failed to update profile")
	}

	return c.JSON(fiber.Map{
		"id":      user.ID,
		"name":    user.Name,
		"phone":   user.Phone,
		"address": user.Address,
	})
}
