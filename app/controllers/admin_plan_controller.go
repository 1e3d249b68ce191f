package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/planner"
)

// parseMonth accepts "2006-01" or a full date and returns the first day of
// that month at UTC midnight.
func parseMonth(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01", value); err == nil {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// HandleAdminListPlanRequests returns all plan requests for triage, newest
// first as the repository orders them.
func HandleAdminListPlanRequests(c *fiber.Ctx) error {
	requests, err := repository.GetGlobalFactory().GetPlanRequestRepository().GetAll()
	if err != nil {
		return internalError(c, "Failed to load plan requests")
	}
	return c.JSON(requests)
}

type triageRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// HandleAdminTriageRequest advances a plan request through the triage
// pipeline. Moving backwards or out of closed is rejected.
func HandleAdminTriageRequest(c *fiber.Ctx) error {
	requestID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid request id")
	}

	var req triageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	request, err := plannerService().TriageRequest(requestID, models.PlanRequestStatus(req.Status), req.AdminNotes, timeNow())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTransition):
			return conflict(c, "This request cannot move to that stage")
		default:
			return notFound(c, "Plan request not found")
		}
	}
	return c.JSON(request)
}

type scheduleRowRequest struct {
	ServiceID       uint            `json:"service_id"`
	DayOfWeek       int             `json:"day_of_week"`
	StartTime       string          `json:"start_time"`
	DurationMinutes int             `json:"duration_minutes"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

type planCreateRequest struct {
	CustomerID uint                 `json:"customer_id"`
	RequestID  string               `json:"request_id"`
	Title      string               `json:"title"`
	Address    string               `json:"address"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	ValidUntil string               `json:"valid_until"`
	VatRate    *decimal.Decimal     `json:"vat_rate"`
	Schedule   []scheduleRowRequest `json:"schedule"`
}

// HandleAdminCreatePlan creates a monthly plan with its weekly schedule, an
// anchor booking and an estimate quote in one transaction. An optional
// request_id links the originating plan request and marks it quoted.
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	var req planCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	input := planner.PlanCreateInput{
		CustomerID: req.CustomerID,
		Title:      req.Title,
		Address:    req.Address,
	}

	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return badRequest(c, "Invalid start date")
		}
		input.StartDate = start
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return badRequest(c, "Invalid end date")
		}
		input.EndDate = &end
	}
	if req.ValidUntil != "" {
		validUntil, err := parseDate(req.ValidUntil)
		if err != nil {
			return badRequest(c, "Invalid quote validity date")
		}
		input.ValidUntil = validUntil
	}

	if req.VatRate != nil {
		input.VatRate = *req.VatRate
	} else {
		input.VatRate = models.GetBusinessSettings().VatRate
	}

	for _, row := range req.Schedule {
		input.Schedule = append(input.Schedule, planner.ScheduleRowInput{
			ServiceID:       row.ServiceID,
			DayOfWeek:       row.DayOfWeek,
			StartTime:       row.StartTime,
			DurationMinutes: row.DurationMinutes,
			UnitPrice:       row.UnitPrice,
		})
	}

	var requestID *uuid.UUID
	if req.RequestID != "" {
		id, err := parseUUIDString(req.RequestID)
		if err != nil {
			return badRequest(c, "Invalid request id")
		}
		requestID = &id
	}

	plan, err := plannerService().CreatePlanWithQuote(input, requestID, timeNow())
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrUnknownService):
			return badRequest(c, "Select a service for each schedule slot")
		case errors.Is(err, models.ErrInvalidTransition):
			return conflict(c, "The linked request cannot move to quoted")
		default:
			return badRequest(c, err.Error())
		}
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminListPlans returns all monthly plans, optionally filtered by
// ?status=.
func HandleAdminListPlans(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetMonthlyPlanRepository()

	if status := c.Query("status"); status != "" {
		plans, err := repo.GetByStatus(models.MonthlyPlanStatus(status))
		if err != nil {
			return internalError(c, "Failed to load plans")
		}
		return c.JSON(plans)
	}

	plans, err := repo.GetAll()
	if err != nil {
		return internalError(c, "Failed to load plans")
	}
	return c.JSON(plans)
}

// HandleAdminGetPlan returns one plan with its weekly schedule.
func HandleAdminGetPlan(c *fiber.Ctx) error {
	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	repo := repository.GetGlobalFactory().GetMonthlyPlanRepository()
	plan, err := repo.GetByID(planID)
	if err != nil {
		return notFound(c, "Plan not found")
	}
	schedule, err := repo.GetSchedule(planID)
	if err != nil {
		return internalError(c, "Failed to load plan schedule")
	}

	return c.JSON(fiber.Map{
		"plan":     plan,
		"schedule": schedule,
	})
}

type planStatusRequest struct {
	Status string `json:"status"`
}

// HandleAdminSetPlanStatus moves a plan through its lifecycle
// (activate, pause, resume, cancel).
func HandleAdminSetPlanStatus(c *fiber.Ctx) error {
	planID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}

	var req planStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	plan, err := plannerService().SetPlanStatus(planID, models.MonthlyPlanStatus(req.Status), timeNow())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTransition):
			return conflict(c, "This plan cannot move to that status")
		default:
			return notFound(c, "Plan not found")
		}
	}
	return c.JSON(plan)
}

type generateBookingsRequest struct {
	PlanID string `json:"plan_id"`
	Month  string `json:"month"`
}

// HandleAdminGenerateBookings materializes a plan's weekly schedule into
// confirmed bookings for one month. Safe to rerun; existing occurrences are
// skipped.
func HandleAdminGenerateBookings(c *fiber.Ctx) error {
	var req generateBookingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	planID, err := parseUUIDString(req.PlanID)
	if err != nil {
		return badRequest(c, "Invalid plan id")
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		return badRequest(c, "Invalid month")
	}

	created, err := plannerService().GenerateBookings(planID, month)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrPlanNotActive):
			return conflict(c, "Only active plans can generate bookings")
		default:
			return notFound(c, "Plan not found")
		}
	}
	return c.JSON(fiber.Map{"created": created})
}

type generateInvoicesRequest struct {
	Month string `json:"month"`
}

// HandleAdminGenerateInvoices produces month-end invoices for all active
// plans with billable visits in the given month. Plans already invoiced for
// the month are skipped.
func HandleAdminGenerateInvoices(c *fiber.Ctx) error {
	var req generateInvoicesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	month, err := parseMonth(req.Month)
	if err != nil {
		return badRequest(c, "Invalid month")
	}

	created, err := plannerService().GenerateInvoices(month)
	if err != nil {
		return internalError(c, "Failed to generate invoices")
	}
	return c.JSON(fiber.Map{"created": created})
}
