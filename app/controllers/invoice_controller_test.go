package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/billing"
)

func seedDraftInvoice(t *testing.T, db *gorm.DB, customer *models.User) *models.Invoice {
	t.Helper()

	invoice, err := billing.NewService(db).CreateInvoiceWithItems(billing.InvoiceCreateInput{
		CustomerID: customer.ID,
		IssueDate:  time.Now(),
		DueDate:    time.Now().Add(14 * 24 * time.Hour),
		VatRate:    decimal.NewFromFloat(0.15),
		Items: []billing.LineItemInput{
			{Description: "Spring clean-up", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(800)},
		},
	})
	require.NoError(t, err)
	return invoice
}

func stubInvoiceMail(t *testing.T, fail bool) *int {
	t.Helper()
	calls := 0
	original := sendInvoiceMail
	sendInvoiceMail = func(to, subject, body string) error {
		calls++
		if fail {
			return errors.New("smtp unreachable")
		}
		return nil
	}
	t.Cleanup(func() { sendInvoiceMail = original })
	return &calls
}

func TestHandleAdminSendInvoice(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	invoice := seedDraftInvoice(t, db, customer)
	calls := stubInvoiceMail(t, false)

	app := newTestApp(customer, true)
	app.Post("/admin/invoices/:id/send", HandleAdminSendInvoice)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/invoices/"+invoice.ID.String()+"/send", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["emailed"])
	assert.Equal(t, 1, *calls)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoiceSent, stored.Status)
}

func TestHandleAdminSendInvoiceEmailFailureKeepsStatus(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	invoice := seedDraftInvoice(t, db, customer)
	stubInvoiceMail(t, true)

	app := newTestApp(customer, true)
	app.Post("/admin/invoices/:id/send", HandleAdminSendInvoice)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/invoices/"+invoice.ID.String()+"/send", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["emailed"])
	assert.Equal(t, "Invoice marked as sent, but the email could not be delivered", body["message"])

	// The status change sticks regardless of delivery.
	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoiceSent, stored.Status)
}

func TestHandleAdminSendInvoiceRejectsPaid(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	invoice := seedDraftInvoice(t, db, customer)
	stubInvoiceMail(t, false)

	require.NoError(t, db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("status", models.InvoicePaid).Error)

	app := newTestApp(customer, true)
	app.Post("/admin/invoices/:id/send", HandleAdminSendInvoice)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/invoices/"+invoice.ID.String()+"/send", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleAdminRecordPayment(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	invoice := seedDraftInvoice(t, db, customer)
	require.NoError(t, db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("status", models.InvoiceSent).Error)

	app := newTestApp(customer, true)
	app.Post("/admin/payments", HandleAdminRecordPayment)

	payload := map[string]any{
		"invoice_id": invoice.ID.String(),
		"method":     "eft",
		"amount":     "920.00",
		"reference":  "EFT-5521",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/payments", payload), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoicePaid, stored.Status)
	require.NotNil(t, stored.PaidAt)

	// Paid invoices accept no further payments.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/admin/payments", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleAdminRecordPaymentRejectsNonPositive(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	invoice := seedDraftInvoice(t, db, customer)
	require.NoError(t, db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("status", models.InvoiceSent).Error)

	app := newTestApp(customer, true)
	app.Post("/admin/payments", HandleAdminRecordPayment)

	payload := map[string]any{
		"invoice_id": invoice.ID.String(),
		"method":     "eft",
		"amount":     "0",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/payments", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
