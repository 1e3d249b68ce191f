package controllers

import (
	"net/http"
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

func seedQuoteForCustomer(t *testing.T, db *gorm.DB, customer *models.User, validUntil time.Time) *models.Quote {
	t.Helper()

	service := seedTestService(t, db, "Quoted service "+validUntil.Format("20060102150405.000000000"))
	booking := &models.Booking{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		RequestedDatetime: time.Now().Add(24 * time.Hour),
		Address:           "5 Milkwood Drive, Glentana, Western Cape",
		Status:            models.BookingRequested,
	}
	require.NoError(t, db.Create(booking).Error)

	quote, err := billing.NewService(db).CreateQuoteWithItems(billing.QuoteCreateInput{
		CustomerID: customer.ID,
		BookingID:  booking.ID,
		ValidUntil: validUntil,
		VatRate:    decimal.NewFromFloat(0.15),
		Items: []billing.LineItemInput{
			{Description: "Full garden tidy", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(550)},
		},
	})
	require.NoError(t, err)
	return quote
}

func TestHandleQuoteDecisionAcceptCreatesInvoice(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	quote := seedQuoteForCustomer(t, db, customer, time.Now().Add(14*24*time.Hour))

	app := newTestApp(customer, false)
	app.Post("/quotes/:id/decision", HandleQuoteDecision)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/decision", map[string]any{"status": "accepted"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "accepted", body["status"])
	require.Contains(t, body, "invoice")

	var invoice models.Invoice
	require.NoError(t, db.First(&invoice, "quote_id = ?", quote.ID).Error)
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	assert.True(t, invoice.Total.Equal(quote.Total))

	// A decided quote cannot be decided again.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/decision", map[string]any{"status": "declined"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "This quote has already been decided", body["message"])
}

func TestHandleQuoteDecisionDeclineSkipsInvoice(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	quote := seedQuoteForCustomer(t, db, customer, time.Now().Add(14*24*time.Hour))

	app := newTestApp(customer, false)
	app.Post("/quotes/:id/decision", HandleQuoteDecision)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/decision", map[string]any{"status": "declined"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Invoice{}).Where("quote_id = ?", quote.ID).Count(&count)
	assert.Zero(t, count)
}

func TestHandleQuoteDecisionExpired(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	quote := seedQuoteForCustomer(t, db, customer, time.Now().Add(-72*time.Hour))

	app := newTestApp(customer, false)
	app.Post("/quotes/:id/decision", HandleQuoteDecision)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/decision", map[string]any{"status": "accepted"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "This quote has expired and can no longer be accepted or declined", body["message"])
}

func TestHandleQuoteDecisionOwnership(t *testing.T) {
	db := setupTestApp(t)
	owner := seedTestCustomer(t, db)
	stranger := seedTestCustomer(t, db)
	quote := seedQuoteForCustomer(t, db, owner, time.Now().Add(14*24*time.Hour))

	app := newTestApp(stranger, false)
	app.Post("/quotes/:id/decision", HandleQuoteDecision)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/quotes/"+quote.ID.String()+"/decision", map[string]any{"status": "accepted"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
