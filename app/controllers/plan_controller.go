package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/env"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/planner"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

func plannerService() *planner.Service {
	return planner.NewService(database.GetDB(), billingService())
}

type planRequestCreateRequest struct {
	Title              string `json:"title"`
	StreetAddress      string `json:"street_address"`
	Area               string `json:"area"`
	PreferredStartDate string `json:"preferred_start_date"`
	FrequencyPerWeek   int    `json:"frequency_per_week"`
	Notes              string `json:"notes"`
}

// HandleCreatePlanRequest files a customer's interest in a recurring monthly
// plan and notifies the office so it lands in the triage queue.
func HandleCreatePlanRequest(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req planRequestCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var preferredStart *time.Time
	if req.PreferredStartDate != "" {
		parsed, err := parseDate(req.PreferredStartDate)
		if err != nil {
			return badRequest(c, "Invalid preferred start date")
		}
		preferredStart = &parsed
	}

	request, err := plannerService().CreateRequest(planner.RequestCreateInput{
		CustomerID:         userCtx.UserID,
		Title:              req.Title,
		StreetAddress:      req.StreetAddress,
		Area:               req.Area,
		PreferredStartDate: preferredStart,
		FrequencyPerWeek:   req.FrequencyPerWeek,
		Notes:              req.Notes,
	})
	if err != nil {
		return badRequest(c, err.Error())
	}

	if adminEmail := env.GetEnv("ADMIN_EMAIL", ""); adminEmail != "" {
		msg := mail.PlanRequestReceived(
			models.GetBusinessSettings().BusinessName,
			userCtx.Username,
			request.Title,
			request.Address,
			request.FrequencyPerWeek,
		)
		_ = queueEmail(adminEmail, msg.Subject, msg.Body)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// HandleListMyPlanRequests returns the logged-in customer's plan requests.
func HandleListMyPlanRequests(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	requests, err := repository.GetGlobalFactory().GetPlanRequestRepository().GetByCustomerID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load plan requests")
	}
	return c.JSON(requests)
}

// HandleListMyPlans returns the logged-in customer's monthly plans with
// their weekly schedules.
func HandleListMyPlans(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	plans, err := repository.GetGlobalFactory().GetMonthlyPlanRepository().GetByCustomerID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load plans")
	}
	return c.JSON(plans)
}

// HandleGetMyPlan returns one of the customer's plans with its schedule.
func HandleGetMyPlan(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	plan, err := repository.GetGlobalFactory().GetMonthlyPlanRepository().GetByID(planID)
	if err != nil || plan.CustomerID != userCtx.UserID {
		return notFound(c, "Plan not found")
	}

	schedule, err := repository.GetGlobalFactory().GetMonthlyPlanRepository().GetSchedule(planID)
	if err != nil {
		return internalError(c, "Failed to load plan schedule")
	}

	return c.JSON(fiber.Map{
		"plan":     plan,
		"schedule": schedule,
	})
}
