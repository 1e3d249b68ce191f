package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingRequested, BookingConfirmed, true},
		{BookingRequested, BookingCancelled, true},
		{BookingRequested, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRequested, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingRequested, false},
	}

	for _, tc := range tests {
		b := &Booking{Status: tc.from}
		assert.Equal(t, tc.allowed, b.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestInvoiceTransitions(t *testing.T) {
	tests := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceDraft, InvoiceSent, true},
		{InvoiceDraft, InvoiceVoid, true},
		{InvoiceDraft, InvoicePaid, false},
		{InvoiceSent, InvoiceOverdue, true},
		{InvoiceSent, InvoicePaid, true},
		{InvoiceOverdue, InvoicePaid, true},
		{InvoiceOverdue, InvoiceSent, false},
		{InvoicePaid, InvoiceVoid, false},
		{InvoiceVoid, InvoiceSent, false},
	}

	for _, tc := range tests {
		i := &Invoice{Status: tc.from}
		assert.Equal(t, tc.allowed, i.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestInvoiceIsOverdue(t *testing.T) {
	now := time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&Invoice{Status: InvoiceSent, DueDate: due}).IsOverdue(now))
	assert.True(t, (&Invoice{Status: InvoiceOverdue, DueDate: due}).IsOverdue(now))
	assert.False(t, (&Invoice{Status: InvoicePaid, DueDate: due}).IsOverdue(now))
	assert.False(t, (&Invoice{Status: InvoiceDraft, DueDate: due}).IsOverdue(now))

	// Due today is not overdue yet.
	today := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	assert.False(t, (&Invoice{Status: InvoiceSent, DueDate: today}).IsOverdue(now))
}

func TestInvoicePaidTotal(t *testing.T) {
	invoice := &Invoice{
		Payments: []Payment{
			{Amount: decimal.RequireFromString("100.00")},
			{Amount: decimal.RequireFromString("49.50")},
		},
	}
	assert.True(t, invoice.PaidTotal().Equal(decimal.RequireFromString("149.50")))
	assert.True(t, (&Invoice{}).PaidTotal().IsZero())
}

func TestMonthlyPlanTransitionStampsTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := &MonthlyPlan{Status: PlanQuoted}

	require.NoError(t, plan.Transition(PlanActive, now))
	require.NotNil(t, plan.ActivatedAt)
	assert.Equal(t, now, *plan.ActivatedAt)

	later := now.Add(48 * time.Hour)
	require.NoError(t, plan.Transition(PlanPaused, later))
	require.NotNil(t, plan.PausedAt)

	// Resuming clears the pause marker.
	resumed := later.Add(24 * time.Hour)
	require.NoError(t, plan.Transition(PlanActive, resumed))
	assert.Nil(t, plan.PausedAt)
	assert.Equal(t, resumed, *plan.ActivatedAt)

	require.NoError(t, plan.Transition(PlanCancelled, resumed))
	require.NotNil(t, plan.CancelledAt)

	err := plan.Transition(PlanActive, resumed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestMonthlyPlanCoversDate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	open := &MonthlyPlan{StartDate: start}
	assert.False(t, open.CoversDate(start.AddDate(0, 0, -1)))
	assert.True(t, open.CoversDate(start))
	assert.True(t, open.CoversDate(start.AddDate(2, 0, 0)))

	bounded := &MonthlyPlan{StartDate: start, EndDate: &end}
	assert.True(t, bounded.CoversDate(end))
	assert.False(t, bounded.CoversDate(end.AddDate(0, 0, 1)))
}

func TestPlanRequestTransitionsSkipForwardOnly(t *testing.T) {
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	r := &MonthlyPlanRequest{Status: RequestRequested}
	require.NoError(t, r.Transition(RequestQuoted, now))
	assert.Nil(t, r.ContactedAt)

	// Backwards is never allowed.
	assert.Error(t, r.Transition(RequestContacted, now))

	contacted := &MonthlyPlanRequest{Status: RequestRequested}
	require.NoError(t, contacted.Transition(RequestContacted, now))
	require.NotNil(t, contacted.ContactedAt)

	closed := &MonthlyPlanRequest{Status: RequestClosed}
	for _, next := range []PlanRequestStatus{RequestRequested, RequestContacted, RequestQuoted} {
		assert.Error(t, closed.Transition(next, now))
	}
}

func TestPaymentValidateRejectsNonPositiveAmount(t *testing.T) {
	p := &Payment{Method: PaymentEFT, Amount: decimal.Zero}
	assert.True(t, errors.Is(p.Validate(), ErrNonPositiveAmount))

	p.Amount = decimal.RequireFromString("-5")
	assert.True(t, errors.Is(p.Validate(), ErrNonPositiveAmount))

	p.Amount = decimal.RequireFromString("5")
	assert.NoError(t, p.Validate())
}
