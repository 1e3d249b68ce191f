package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/billing"
	"github.com/evergreengarden/portal/internal/pkg/documents"
	"github.com/evergreengarden/portal/internal/pkg/mail"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

// documentsClient is initialized at boot when document storage is enabled.
var documentsClient *documents.Client

// SetDocumentsClient wires the storage client in during startup.
func SetDocumentsClient(client *documents.Client) {
	documentsClient = client
}

type paymentCreateRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// HandleAdminRecordPayment records money received against an invoice and
// emails the customer once it lands.
func HandleAdminRecordPayment(c *fiber.Ctx) error {
	var req paymentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	invoiceID, err := parseUUIDString(req.InvoiceID)
	if err != nil {
		return badRequest(c, "Invalid invoice id")
	}

	payment, err := billingService().RecordPayment(billing.PaymentInput{
		InvoiceID: invoiceID,
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
	}, timeNow())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound(c, "Invoice not found")
		case errors.Is(err, billing.ErrInvoiceNotPayable):
			return conflict(c, "This invoice cannot accept payments in its current status")
		default:
			return badRequest(c, err.Error())
		}
	}

	invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(invoiceID)
	if err == nil && invoice.Customer != nil {
		msg := mail.PaymentReceived(
			models.GetBusinessSettings().BusinessName,
			invoice.Customer.Name,
			invoice.InvoiceNumber,
			payment.Amount,
		)
		_ = queueEmail(invoice.Customer.Email, msg.Subject, msg.Body)
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleUploadProofOfPayment stores a customer's proof-of-payment file
// against their own invoice and records an EFT payment pending review.
func HandleUploadProofOfPayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if documentsClient == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "unavailable", "Document uploads are not enabled")
	}

	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice id")
	}

	invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(invoiceID)
	if err != nil {
		return notFound(c, "Invoice not found")
	}
	if invoice.CustomerID != userCtx.UserID {
		return notFound(c, "Invoice not found")
	}
	if invoice.Status != models.InvoiceSent && invoice.Status != models.InvoiceOverdue {
		return conflict(c, "This invoice cannot accept payments in its current status")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Attach a proof of payment file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return internalError(c, "Failed to read upload")
	}
	defer file.Close()

	objectKey := documents.ProofObjectKey(userCtx.UserID, invoice.ID.String(), fileHeader.Filename, timeNow())
	if _, err := documentsClient.UploadProof(c.Context(), objectKey, file, fileHeader.Size); err != nil {
		return internalError(c, "Failed to store proof of payment")
	}

	amount := invoice.Total.Sub(invoice.PaidTotal())
	payment, err := billingService().RecordPayment(billing.PaymentInput{
		InvoiceID:     invoice.ID,
		Method:        string(models.PaymentEFT),
		Amount:        amount,
		Reference:     fileHeader.Filename,
		ProofFilePath: objectKey,
	}, timeNow())
	if err != nil {
		return internalError(c, "Proof stored but the payment could not be recorded")
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleProofOfPaymentLink mints a short-lived download URL for a stored
// proof document. Admins see all; customers only their own.
func HandleProofOfPaymentLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	if documentsClient == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "unavailable", "Document storage is not enabled")
	}

	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid payment id")
	}

	payment, err := repository.GetGlobalFactory().GetPaymentRepository().GetByID(paymentID)
	if err != nil {
		return notFound(c, "Payment not found")
	}
	if payment.ProofFilePath == "" {
		return notFound(c, "No proof of payment on file")
	}

	if !userCtx.IsAdmin {
		invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(payment.InvoiceID)
		if err != nil || invoice.CustomerID != userCtx.UserID {
			return notFound(c, "Payment not found")
		}
	}

	url, err := documentsClient.PresignDownload(c.Context(), payment.ProofFilePath)
	if err != nil {
		return internalError(c, "Failed to create download link")
	}

	return c.JSON(fiber.Map{
		"url":        url,
		"expires_in": int(documents.DownloadLinkTTL.Seconds()),
	})
}
