package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/env"
	"github.com/evergreengarden/portal/internal/pkg/hcaptcha"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/session"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	HCaptchaToken   string `json:"h_captcha_response"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an inactive customer account and queues the
// activation email.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		valid, err := hcaptcha.Verify(req.HCaptchaToken)
		if err != nil || !valid {
			return badRequest(c, "Captcha validation failed. Please try again.")
		}
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return badRequest(c, fmt.Sprintf("something went wrong: %s", err))
	}
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	if err := user.GenerateActivationToken(); err != nil {
		return internalError(c, "Failed to prepare activation")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(user.Email); err == nil {
		return conflict(c, "An account with this email already exists")
	}
	if err := repo.Create(user); err != nil {
		return internalError(c, "Failed to create account")
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	activationURL := fmt.Sprintf("%s/activate?token=%s", base, user.ActivationToken)
	msg := mail.AccountActivation(models.GetBusinessSettings().BusinessName, user.Name, activationURL)
	if err := queueEmail(user.Email, msg.Subject, msg.Body); err != nil {
		// Account exists either way; the user can request a new activation mail.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "emailed": false})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "emailed": true})
}

// HandleActivate flips an inactive account to active via its token.
func HandleActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "Activation token is required")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Invalid activation token")
		}
		return internalError(c, "Failed to activate account")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := repo.Update(user); err != nil {
		return internalError(c, "Failed to activate account")
	}

	return c.JSON(fiber.Map{"activated": true})
}

// HandleLogin establishes a session for an active account.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	// notice: in production you should not inform the user
	// with detailed messages about login failures
	if err != nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "There is a problem with the login process")
	}
	if user.Status == models.STATUS_DISABLED {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "This account has been disabled")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Please activate your account first")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return internalError(c, fmt.Sprintf("something went wrong: %s", err))
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.IsAdmin())

	if err := sess.Save(); err != nil {
		return internalError(c, fmt.Sprintf("something went wrong: %s", err))
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = repo.Update(user)

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.IsAdmin(),
	})
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	c.Locals(FROM_PROTECTED, false)

	return c.JSON(fiber.Map{"logged_out": true})
}
