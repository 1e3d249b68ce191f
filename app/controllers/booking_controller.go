package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/env"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

type bookingCreateRequest struct {
	ServiceID         uint   `json:"service_id"`
	RequestedDatetime string `json:"requested_datetime"`
	StreetAddress     string `json:"street_address"`
	Area              string `json:"area"`
	Notes             string `json:"notes"`
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

// HandleCreateBooking takes a customer's ad hoc visit request. The street and
// area are validated separately and composed into the stored address.
func HandleCreateBooking(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req bookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.ServiceID == 0 {
		return badRequest(c, "Select a service")
	}
	service, err := repository.GetGlobalFactory().GetServiceRepository().GetByID(req.ServiceID)
	if err != nil || !service.Active {
		return badRequest(c, "Select a service")
	}

	requestedAt, err := parseDate(req.RequestedDatetime)
	if err != nil {
		return badRequest(c, "Select a date and time")
	}
	if requestedAt.Before(time.Now()) {
		return badRequest(c, "Select a date and time in the future")
	}

	if len(strings.TrimSpace(req.StreetAddress)) < 4 {
		return badRequest(c, "Enter street name and number")
	}
	if strings.TrimSpace(req.Area) == "" {
		return badRequest(c, "Select an area")
	}
	areas := serviceareas.Resolve(models.GetBusinessSettings().ServiceAreas())
	if !serviceareas.Contains(areas, req.Area) {
		return badRequest(c, "Select an area from the list")
	}
	if len(req.Notes) > 1000 {
		return badRequest(c, "Notes must be 1000 characters or less")
	}

	booking := &models.Booking{
		CustomerID:        userCtx.UserID,
		ServiceID:         req.ServiceID,
		RequestedDatetime: requestedAt,
		Address:           serviceareas.ComposeAddress(req.StreetAddress, req.Area),
		Notes:             req.Notes,
		Status:            models.BookingRequested,
	}
	if err := repository.GetGlobalFactory().GetBookingRepository().Create(booking); err != nil {
		return internalError(c, "Failed to create booking")
	}

	if adminEmail := env.GetEnv("ADMIN_EMAIL", ""); adminEmail != "" {
		msg := mail.BookingRequested(
			models.GetBusinessSettings().BusinessName,
			userCtx.Username,
			service.Name,
			requestedAt,
			booking.Address,
		)
		_ = queueEmail(adminEmail, msg.Subject, msg.Body)
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

// HandleListMyBookings returns the customer's bookings, newest first.
func HandleListMyBookings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	bookings, err := repository.GetGlobalFactory().GetBookingRepository().GetByCustomerID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load bookings")
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// HandleCancelMyBooking lets a customer cancel their own booking while it is
// still requested or confirmed.
func HandleCancelMyBooking(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	repo := repository.GetGlobalFactory().GetBookingRepository()
	booking, err := repo.GetByID(id)
	if err != nil {
		return notFound(c, "Booking not found")
	}
	if booking.CustomerID != userCtx.UserID {
		return notFound(c, "Booking not found")
	}
	if !booking.CanTransitionTo(models.BookingCancelled) {
		return conflict(c, "This booking can no longer be cancelled")
	}

	booking.Status = models.BookingCancelled
	if err := repo.Update(booking); err != nil {
		return internalError(c, "Failed to cancel booking")
	}
	return c.JSON(booking)
}

// HandleAdminListBookings lists bookings with optional status and date
// filters.
func HandleAdminListBookings(c *fiber.Ctx) error {
	filter := repository.BookingFilter{
		Status: models.BookingStatus(c.Query("status")),
	}
	if v := c.Query("from"); v != "" {
		if t, err := parseDate(v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := parseDate(v); err == nil {
			filter.To = &t
		}
	}

	bookings, err := repository.GetGlobalFactory().GetBookingRepository().List(filter)
	if err != nil {
		return internalError(c, "Failed to load bookings")
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// HandleAdminSetBookingStatus moves a booking through its lifecycle.
// Confirming stamps the confirmed time and emails the customer.
func HandleAdminSetBookingStatus(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	var req bookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	next := models.BookingStatus(req.Status)

	repo := repository.GetGlobalFactory().GetBookingRepository()
	booking, err := repo.GetByID(id)
	if err != nil {
		return notFound(c, "Booking not found")
	}
	if !booking.CanTransitionTo(next) {
		return conflict(c, "Booking cannot move to the requested status")
	}

	booking.Status = next
	if next == models.BookingConfirmed {
		now := time.Now()
		booking.ConfirmedDatetime = &now
	}
	if err := repo.Update(booking); err != nil {
		return internalError(c, "Failed to update booking")
	}

	if next == models.BookingConfirmed && booking.Customer != nil && booking.Service != nil {
		msg := mail.BookingConfirmed(
			models.GetBusinessSettings().BusinessName,
			booking.Customer.Name,
			booking.Service.Name,
			booking.RequestedDatetime,
			booking.Address,
		)
		_ = queueEmail(booking.Customer.Email, msg.Subject, msg.Body)
	}

	return c.JSON(booking)
}
