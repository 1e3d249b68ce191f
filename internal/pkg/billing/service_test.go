package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evergreengarden/portal/app/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Booking{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.BusinessSettings{},
	)
	require.NoError(t, err)
	require.NoError(t, models.LoadBusinessSettings(db))

	return db
}

func seedCustomerWithBooking(t *testing.T, db *gorm.DB) (*models.User, *models.Booking) {
	t.Helper()

	user := &models.User{
		Name:     "Pieter van Wyk",
		Email:    fmt.Sprintf("pieter+%d@example.com", time.Now().UnixNano()),
		Password: "irrelevant",
		Role:     models.ROLE_CUSTOMER,
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(user).Error)

	svc := &models.Service{Name: "Garden cleanup", DefaultDurationMinutes: 120, Active: true}
	require.NoError(t, db.Create(svc).Error)

	booking := &models.Booking{
		CustomerID:        user.ID,
		ServiceID:         svc.ID,
		RequestedDatetime: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		Address:           "7 Aalwyn Road, Hartenbos, Western Cape",
		Status:            models.BookingRequested,
	}
	require.NoError(t, db.Create(booking).Error)
	return user, booking
}

func quoteInput(customerID uint, bookingID uuid.UUID) QuoteCreateInput {
	return QuoteCreateInput{
		CustomerID: customerID,
		BookingID:  bookingID,
		ValidUntil: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		VatRate:    d("0.15"),
		Items: []LineItemInput{
			{Description: "Garden cleanup", Qty: d("1"), UnitPrice: d("800.00")},
			{Description: "Green waste removal", Qty: d("2"), UnitPrice: d("150.00")},
		},
	}
}

func TestCreateQuoteWithItems(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)

	quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
	require.NoError(t, err)

	assert.Equal(t, "Q-00001", quote.QuoteNumber)
	assert.Equal(t, models.QuoteSent, quote.Status)
	require.Len(t, quote.Items, 2)
	assert.True(t, quote.Subtotal.Equal(d("1100.00")))
	assert.True(t, quote.VatAmount.Equal(d("165.00")))
	assert.True(t, quote.Total.Equal(d("1265.00")))
}

func TestDocumentNumbersAreSequential(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)

	for i := 1; i <= 3; i++ {
		quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%05d", i), quote.QuoteNumber)
	}

	invoice, err := svc.CreateInvoiceWithItems(InvoiceCreateInput{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
		VatRate:    d("0.15"),
		Items:      []LineItemInput{{Description: "Garden cleanup", Qty: d("1"), UnitPrice: d("800.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", invoice.InvoiceNumber)
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
}

func TestRejectedQuoteLeavesNoRows(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)

	in := quoteInput(customer.ID, booking.ID)
	in.Items[1].Qty = d("0")

	_, err := svc.CreateQuoteWithItems(in)
	require.ErrorIs(t, err, ErrNonPositiveQty)

	var quotes, items int64
	require.NoError(t, db.Model(&models.Quote{}).Count(&quotes).Error)
	require.NoError(t, db.Model(&models.QuoteItem{}).Count(&items).Error)
	assert.Zero(t, quotes)
	assert.Zero(t, items)
}

func TestAcceptQuoteCreatesInvoice(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
	require.NoError(t, err)

	invoice, err := svc.SetQuoteStatus(quote.ID, models.QuoteAccepted, true, now)
	require.NoError(t, err)
	require.NotNil(t, invoice)

	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.True(t, invoice.Total.Equal(quote.Total))
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, invoice.IssueDate.AddDate(0, 0, 14), invoice.DueDate)

	var saved models.Quote
	require.NoError(t, db.First(&saved, "id = ?", quote.ID).Error)
	assert.Equal(t, models.QuoteAccepted, saved.Status)
}

func TestDeclineQuoteCreatesNoInvoice(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
	require.NoError(t, err)

	invoice, err := svc.SetQuoteStatus(quote.ID, models.QuoteDeclined, true, now)
	require.NoError(t, err)
	assert.Nil(t, invoice)

	var invoices int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
}

func TestExpiredQuoteCannotBeAccepted(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)

	quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
	require.NoError(t, err)

	afterValidity := time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC)
	_, err = svc.SetQuoteStatus(quote.ID, models.QuoteAccepted, true, afterValidity)
	require.ErrorIs(t, err, ErrQuoteNotActionable)

	// Marking it expired is still allowed.
	_, err = svc.SetQuoteStatus(quote.ID, models.QuoteExpired, false, afterValidity)
	require.NoError(t, err)

	var saved models.Quote
	require.NoError(t, db.First(&saved, "id = ?", quote.ID).Error)
	assert.Equal(t, models.QuoteExpired, saved.Status)
}

func TestAcceptedQuoteIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	customer, booking := seedCustomerWithBooking(t, db)
	svc := NewService(db)
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	quote, err := svc.CreateQuoteWithItems(quoteInput(customer.ID, booking.ID))
	require.NoError(t, err)

	_, err = svc.SetQuoteStatus(quote.ID, models.QuoteAccepted, false, now)
	require.NoError(t, err)

	_, err = svc.SetQuoteStatus(quote.ID, models.QuoteDeclined, false, now)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func sentInvoice(t *testing.T, db *gorm.DB, svc *Service, customerID uint) *models.Invoice {
	t.Helper()

	invoice, err := svc.CreateInvoiceWithItems(InvoiceCreateInput{
		CustomerID: customerID,
		IssueDate:  time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
		VatRate:    d("0.15"),
		Items:      []LineItemInput{{Description: "Garden cleanup", Qty: d("1"), UnitPrice: d("1000.00")}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Update("status", models.InvoiceSent).Error)
	invoice.Status = models.InvoiceSent
	return invoice
}

func TestRecordPayment(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCustomerWithBooking(t, db)
	svc := NewService(db)
	now := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	invoice := sentInvoice(t, db, svc, customer.ID)

	// A partial payment leaves the invoice open.
	_, err := svc.RecordPayment(PaymentInput{
		InvoiceID: invoice.ID,
		Method:    "eft",
		Amount:    d("500.00"),
		Reference: "EFT-20260402-01",
	}, now)
	require.NoError(t, err)

	var open models.Invoice
	require.NoError(t, db.First(&open, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoiceSent, open.Status)
	assert.Nil(t, open.PaidAt)

	// The balance settles it.
	_, err = svc.RecordPayment(PaymentInput{
		InvoiceID: invoice.ID,
		Method:    "eft",
		Amount:    d("650.00"),
		Reference: "EFT-20260402-02",
	}, now)
	require.NoError(t, err)

	var paid models.Invoice
	require.NoError(t, db.First(&paid, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, now, paid.PaidAt.UTC())
}

func TestRecordPaymentRejections(t *testing.T) {
	db := setupTestDB(t)
	customer, _ := seedCustomerWithBooking(t, db)
	svc := NewService(db)
	now := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	invoice := sentInvoice(t, db, svc, customer.ID)

	_, err := svc.RecordPayment(PaymentInput{
		InvoiceID: invoice.ID,
		Method:    "eft",
		Amount:    d("0"),
	}, now)
	require.ErrorIs(t, err, models.ErrNonPositiveAmount)

	// Paid invoices take no further payments.
	_, err = svc.RecordPayment(PaymentInput{
		InvoiceID: invoice.ID,
		Method:    "eft",
		Amount:    d("1150.00"),
	}, now)
	require.NoError(t, err)

	_, err = svc.RecordPayment(PaymentInput{
		InvoiceID: invoice.ID,
		Method:    "cash",
		Amount:    d("10.00"),
	}, now)
	require.ErrorIs(t, err, ErrInvoiceNotPayable)
}
