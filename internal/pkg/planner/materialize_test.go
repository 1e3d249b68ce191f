package planner

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// activePlan creates a quoted plan and activates it.
func activePlan(t *testing.T, db *gorm.DB, p *Service, in PlanCreateInput) *models.MonthlyPlan {
	t.Helper()
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	plan, err := p.CreatePlanWithQuote(in, nil, now)
	require.NoError(t, err)
	plan, err = p.SetPlanStatus(plan.ID, models.PlanActive, now)
	require.NoError(t, err)
	return plan
}

func TestGenerateBookings(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	plan := activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// March 2026 has five Tuesdays: 3, 10, 17, 24, 31.
	created, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	var bookings []models.Booking
	require.NoError(t, db.Where("customer_id = ? AND notes = ?", customer.ID, plan.Title).
		Order("requested_datetime").Find(&bookings).Error)
	require.Len(t, bookings, 5)
	for _, booking := range bookings {
		assert.Equal(t, models.BookingConfirmed, booking.Status)
		assert.Equal(t, time.Tuesday, booking.RequestedDatetime.Weekday())
		assert.Equal(t, 8, booking.RequestedDatetime.Hour())
		assert.Equal(t, plan.Address, booking.Address)
	}
	assert.Equal(t, 3, bookings[0].RequestedDatetime.Day())
	assert.Equal(t, 31, bookings[4].RequestedDatetime.Day())
}

func TestGenerateBookingsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	plan := activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))
	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	first, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)
	require.Equal(t, 5, first)

	second, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)
	assert.Zero(t, second)

	var occurrences int64
	require.NoError(t, db.Model(&models.MonthlyPlanOccurrence{}).
		Where("plan_id = ?", plan.ID).Count(&occurrences).Error)
	assert.EqualValues(t, 5, occurrences)
}

func TestGenerateBookingsRespectsPlanWindow(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	in := validPlanInput(customer.ID, svc.ID)
	in.StartDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	in.EndDate = &end
	plan := activePlan(t, db, p, in)

	created, err := p.GenerateBookings(plan.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// Tuesdays inside 9-25 March: 10, 17, 24.
	assert.Equal(t, 3, created)
}

func TestGenerateBookingsRequiresActivePlan(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	plan, err := p.CreatePlanWithQuote(validPlanInput(customer.ID, svc.ID), nil, now)
	require.NoError(t, err)

	_, err = p.GenerateBookings(plan.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrPlanNotActive)

	_, err = p.SetPlanStatus(plan.ID, models.PlanActive, now)
	require.NoError(t, err)
	_, err = p.SetPlanStatus(plan.ID, models.PlanPaused, now)
	require.NoError(t, err)

	_, err = p.GenerateBookings(plan.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrPlanNotActive)
}

func TestGenerateInvoices(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	plan := activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)

	created, err := p.GenerateInvoices(march)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var link models.MonthlyPlanInvoice
	require.NoError(t, db.First(&link, "plan_id = ?", plan.ID).Error)
	assert.Equal(t, march, link.BillingMonth.UTC())

	var invoice models.Invoice
	require.NoError(t, db.Preload("Items").First(&invoice, "id = ?", link.InvoiceID).Error)
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	assert.Equal(t, customer.ID, invoice.CustomerID)
	require.Len(t, invoice.Items, 5)

	// One line per visit at the slot price, VAT on the month's subtotal.
	assert.Contains(t, invoice.Items[0].Description, "Lawn mowing")
	assert.Contains(t, invoice.Items[0].Description, "03 Mar 2026")
	assert.Contains(t, invoice.Items[0].Description, plan.Title)
	wantSubtotal := decimal.NewFromInt(350).Mul(decimal.NewFromInt(5))
	assert.True(t, invoice.Subtotal.Equal(wantSubtotal), "subtotal %s want %s", invoice.Subtotal, wantSubtotal)

	// Due 14 days after month-end.
	assert.Equal(t, time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC), invoice.DueDate.UTC())
}

func TestGenerateInvoicesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	plan := activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)

	first, err := p.GenerateInvoices(march)
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := p.GenerateInvoices(march)
	require.NoError(t, err)
	assert.Zero(t, second)

	var invoices int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&invoices).Error)
	assert.EqualValues(t, 1, invoices)
}

func TestGenerateInvoicesSkipsPlansWithoutVisits(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))

	// No bookings were materialized for April, so nothing is billed.
	created, err := p.GenerateInvoices(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, created)

	var invoices int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
}

func TestGenerateInvoicesSkipsCancelledVisits(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := seedService(t, db, "Lawn mowing")
	p := newPlanner(db)

	plan := activePlan(t, db, p, validPlanInput(customer.ID, svc.ID))
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.GenerateBookings(plan.ID, march)
	require.NoError(t, err)

	// Customer cancelled one visit; it must not be billed.
	var occ models.MonthlyPlanOccurrence
	require.NoError(t, db.First(&occ, "plan_id = ?", plan.ID).Error)
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", occ.BookingID).
		Update("status", models.BookingCancelled).Error)

	created, err := p.GenerateInvoices(march)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	var link models.MonthlyPlanInvoice
	require.NoError(t, db.First(&link, "plan_id = ?", plan.ID).Error)
	var invoice models.Invoice
	require.NoError(t, db.Preload("Items").First(&invoice, "id = ?", link.InvoiceID).Error)
	assert.Len(t, invoice.Items, 4)
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2026, 2, 17, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), last)

	first, last = MonthBounds(time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), last)
	assert.Equal(t, time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), first)
}
