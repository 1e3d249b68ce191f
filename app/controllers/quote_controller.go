package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/billing"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

type quoteItemRequest struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type quoteCreateRequest struct {
	BookingID  string             `json:"booking_id"`
	ValidUntil string             `json:"valid_until"`
	VatRate    *decimal.Decimal   `json:"vat_rate"`
	Items      []quoteItemRequest `json:"items"`
}

type quoteDecisionRequest struct {
	Status        string `json:"status"`
	CreateInvoice *bool  `json:"create_invoice"`
}

func billingService() *billing.Service {
	return billing.NewService(database.GetDB())
}

// HandleAdminCreateQuote quotes a booking: items in, totals and numbering
// server side, customer notified by email.
func HandleAdminCreateQuote(c *fiber.Ctx) error {
	var req quoteCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	bookingID, err := parseUUIDString(req.BookingID)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}
	booking, err := repository.GetGlobalFactory().GetBookingRepository().GetByID(bookingID)
	if err != nil {
		return notFound(c, "Booking not found")
	}

	validUntil, err := parseDate(req.ValidUntil)
	if err != nil {
		return badRequest(c, "Quote validity date is required")
	}

	vatRate := models.GetBusinessSettings().VatRate
	if req.VatRate != nil {
		vatRate = *req.VatRate
	}

	items := make([]billing.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, billing.LineItemInput{
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
		})
	}

	quote, err := billingService().CreateQuoteWithItems(billing.QuoteCreateInput{
		CustomerID: booking.CustomerID,
		BookingID:  booking.ID,
		ValidUntil: validUntil,
		VatRate:    vatRate,
		Items:      items,
	})
	if err != nil {
		return badRequest(c, err.Error())
	}

	if booking.Customer != nil {
		msg := mail.QuoteReady(
			models.GetBusinessSettings().BusinessName,
			booking.Customer.Name,
			quote.QuoteNumber,
			quote.Total,
			quote.ValidUntil,
		)
		_ = queueEmail(booking.Customer.Email, msg.Subject, msg.Body)
	}

	return c.Status(fiber.StatusCreated).JSON(quote)
}

// HandleAdminListQuotes returns every quote with items and customer.
func HandleAdminListQuotes(c *fiber.Ctx) error {
	quotes, err := repository.GetGlobalFactory().GetQuoteRepository().GetAll()
	if err != nil {
		return internalError(c, "Failed to load quotes")
	}
	return c.JSON(fiber.Map{"quotes": quotes})
}

// HandleListMyQuotes returns the customer's quotes.
func HandleListMyQuotes(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	quotes, err := repository.GetGlobalFactory().GetQuoteRepository().GetByCustomerID(userCtx.UserID)
	if err != nil {
		return internalError(c, "Failed to load quotes")
	}
	return c.JSON(fiber.Map{"quotes": quotes})
}

// HandleQuoteDecision lets the customer accept or decline their quote.
// Accepting creates the invoice in the same transaction unless disabled.
func HandleQuoteDecision(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid quote id")
	}

	quote, err := repository.GetGlobalFactory().GetQuoteRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Quote not found")
		}
		return internalError(c, "Failed to load quote")
	}
	if quote.CustomerID != userCtx.UserID {
		return notFound(c, "Quote not found")
	}

	var req quoteDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	status := models.QuoteStatus(req.Status)
	if status != models.QuoteAccepted && status != models.QuoteDeclined {
		return badRequest(c, "Status must be accepted or declined")
	}
	createInvoice := true
	if req.CreateInvoice != nil {
		createInvoice = *req.CreateInvoice
	}

	invoice, err := billingService().SetQuoteStatus(id, status, createInvoice, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrQuoteNotActionable):
			return conflict(c, "This quote has expired and can no longer be accepted or declined")
		case errors.Is(err, models.ErrInvalidTransition):
			return conflict(c, "This quote has already been decided")
		default:
			return internalError(c, "Failed to update quote")
		}
	}

	response := fiber.Map{"status": status}
	if invoice != nil {
		response["invoice"] = invoice

		if quote.Customer != nil {
			msg := mail.InvoiceIssued(
				models.GetBusinessSettings().BusinessName,
				quote.Customer.Name,
				invoice.InvoiceNumber,
				invoice.Total,
				invoice.DueDate,
			)
			_ = queueEmail(quote.Customer.Email, msg.Subject, msg.Body)
		}
	}
	return c.JSON(response)
}

// HandleAdminSetQuoteStatus lets staff expire or decide quotes on a
// customer's behalf (phoned-in decisions).
func HandleAdminSetQuoteStatus(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid quote id")
	}

	var req quoteDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	createInvoice := false
	if req.CreateInvoice != nil {
		createInvoice = *req.CreateInvoice
	}

	invoice, err := billingService().SetQuoteStatus(id, models.QuoteStatus(req.Status), createInvoice, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "Quote not found")
		case errors.Is(err, billing.ErrQuoteNotActionable):
			return conflict(c, "This quote has expired and can no longer be accepted or declined")
		case errors.Is(err, models.ErrInvalidTransition):
			return conflict(c, "Quote cannot move to the requested status")
		default:
			return internalError(c, "Failed to update quote")
		}
	}

	response := fiber.Map{"status": req.Status}
	if invoice != nil {
		response["invoice"] = invoice
	}
	return c.JSON(response)
}
