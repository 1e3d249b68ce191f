package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/billing"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

type invoiceCreateRequest struct {
	CustomerID uint               `json:"customer_id"`
	BookingID  string             `json:"booking_id"`
	IssueDate  string             `json:"issue_date"`
	DueDate    string             `json:"due_date"`
	VatRate    *decimal.Decimal   `json:"vat_rate"`
	Items      []quoteItemRequest `json:"items"`
}

// HandleAdminCreateInvoice creates a manual draft invoice.
func HandleAdminCreateInvoice(c *fiber.Ctx) error {
	var req invoiceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.CustomerID == 0 {
		return badRequest(c, "Select a customer")
	}
	if _, err := repository.GetGlobalFactory().GetUserRepository().GetByID(req.CustomerID); err != nil {
		return badRequest(c, "Select a customer")
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return badRequest(c, "Issue date is required")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return badRequest(c, "Due date is required")
	}
	if dueDate.Before(issueDate) {
		return badRequest(c, "Due date must be on or after the issue date")
	}

	input := billing.InvoiceCreateInput{
		CustomerID: req.CustomerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		VatRate:    models.GetBusinessSettings().VatRate,
	}
	if req.VatRate != nil {
		input.VatRate = *req.VatRate
	}
	if req.BookingID != "" {
		bookingID, err := parseUUIDString(req.BookingID)
		if err != nil {
			return badRequest(c, "Invalid booking id")
		}
		input.BookingID = &bookingID
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, billing.LineItemInput{
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
		})
	}

	invoice, err := billingService().CreateInvoiceWithItems(input)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// HandleAdminListInvoices returns every invoice with items and payments.
func HandleAdminListInvoices(c *fiber.Ctx) error {
	invoices, err := repository.GetGlobalFactory().GetInvoiceRepository().GetAll()
	if err != nil {
		return internalError(c, "Failed to load invoices")
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

// HandleListMyInvoices returns the customer's invoices.
func HandleListMyInvoices(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	invoices, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByCustomerID(userCtx.UserID, false)
	if err != nil {
		return internalError(c, "Failed to load invoices")
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

// sendInvoiceMail delivers the invoice email synchronously so the response
// can report delivery failures.
var sendInvoiceMail = mail.SendMail

// HandleAdminSendInvoice flips a draft invoice to sent and emails it. The
// status change sticks even when email delivery fails; the response then
// carries emailed=false with the reason so staff can follow up manually.
func HandleAdminSendInvoice(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice id")
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	invoice, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Invoice not found")
		}
		return internalError(c, "Failed to load invoice")
	}

	if invoice.Status == models.InvoiceDraft {
		if !invoice.CanTransitionTo(models.InvoiceSent) {
			return conflict(c, "Invoice cannot be sent in its current status")
		}
		invoice.Status = models.InvoiceSent
		if err := repo.Update(invoice); err != nil {
			return internalError(c, "Failed to update invoice")
		}
	} else if invoice.Status != models.InvoiceSent && invoice.Status != models.InvoiceOverdue {
		return conflict(c, "Invoice cannot be sent in its current status")
	}

	customer, err := repository.GetGlobalFactory().GetUserRepository().GetByID(invoice.CustomerID)
	if err != nil {
		return c.JSON(fiber.Map{"emailed": false, "message": "Invoice marked as sent, but the customer could not be loaded"})
	}

	msg := mail.InvoiceIssued(
		models.GetBusinessSettings().BusinessName,
		customer.Name,
		invoice.InvoiceNumber,
		invoice.Total,
		invoice.DueDate,
	)
	if err := sendInvoiceMail(customer.Email, msg.Subject, msg.Body); err != nil {
		return c.JSON(fiber.Map{"emailed": false, "message": "Invoice marked as sent, but the email could not be delivered"})
	}

	return c.JSON(fiber.Map{"emailed": true, "invoice": invoice})
}

// HandleAdminVoidInvoice voids an unpaid invoice.
func HandleAdminVoidInvoice(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice id")
	}

	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	invoice, err := repo.GetByID(id)
	if err != nil {
		return notFound(c, "Invoice not found")
	}
	if !invoice.CanTransitionTo(models.InvoiceVoid) {
		return conflict(c, "Invoice cannot be voided in its current status")
	}

	invoice.Status = models.InvoiceVoid
	if err := repo.Update(invoice); err != nil {
		return internalError(c, "Failed to void invoice")
	}
	return c.JSON(invoice)
}

// HandleAdminCreateInvoiceFromQuote builds an invoice off an accepted quote
// when auto-invoicing was disabled at decision time.
func HandleAdminCreateInvoiceFromQuote(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid quote id")
	}

	quote, err := repository.GetGlobalFactory().GetQuoteRepository().GetByID(id)
	if err != nil {
		return notFound(c, "Quote not found")
	}
	if quote.Status != models.QuoteAccepted {
		return conflict(c, "Only accepted quotes can be invoiced")
	}

	invoice, err := billingService().CreateInvoiceFromQuote(id, timeNow())
	if err != nil {
		return internalError(c, "Failed to create invoice")
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}
