package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLines(t *testing.T) {
	items := []LineItemInput{
		{Description: "Lawn mowing", Qty: d("2"), UnitPrice: d("350.00")},
		{Description: "Hedge trimming", Qty: d("1.5"), UnitPrice: d("200.00")},
	}

	lines, totals, err := ComputeLines(items, d("0.15"))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, lines[0].LineTotal.Equal(d("700.00")))
	assert.True(t, lines[1].LineTotal.Equal(d("300.00")))
	assert.True(t, totals.Subtotal.Equal(d("1000.00")))
	assert.True(t, totals.VatAmount.Equal(d("150.00")))
	assert.True(t, totals.Total.Equal(d("1150.00")))
}

func TestComputeLinesRoundsPerLine(t *testing.T) {
	// 3 x 33.335 = 100.005, rounded half-up to 100.01 on the line.
	items := []LineItemInput{
		{Description: "Irrigation check", Qty: d("3"), UnitPrice: d("33.335")},
	}

	lines, totals, err := ComputeLines(items, d("0"))
	require.NoError(t, err)
	assert.True(t, lines[0].LineTotal.Equal(d("100.01")), "got %s", lines[0].LineTotal)
	assert.True(t, totals.Total.Equal(d("100.01")))
}

func TestComputeLinesVatOnceOnSubtotal(t *testing.T) {
	// VAT applied per line then summed would differ from VAT on the subtotal
	// when lines round. The subtotal is authoritative.
	items := []LineItemInput{
		{Description: "Visit", Qty: d("1"), UnitPrice: d("33.33")},
		{Description: "Visit", Qty: d("1"), UnitPrice: d("33.33")},
		{Description: "Visit", Qty: d("1"), UnitPrice: d("33.33")},
	}

	_, totals, err := ComputeLines(items, d("0.15"))
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(d("99.99")))
	assert.True(t, totals.VatAmount.Equal(d("15.00")), "got %s", totals.VatAmount)
	assert.True(t, totals.Total.Equal(d("114.99")))
}

func TestComputeLinesRejections(t *testing.T) {
	valid := LineItemInput{Description: "Lawn mowing", Qty: d("1"), UnitPrice: d("350")}

	tests := []struct {
		name    string
		items   []LineItemInput
		vatRate decimal.Decimal
		wantErr error
	}{
		{"no items", nil, d("0.15"), ErrNoItems},
		{"blank description", []LineItemInput{{Description: "  ", Qty: d("1"), UnitPrice: d("10")}}, d("0.15"), ErrEmptyDescription},
		{"zero qty", []LineItemInput{{Description: "x", Qty: d("0"), UnitPrice: d("10")}}, d("0.15"), ErrNonPositiveQty},
		{"negative qty", []LineItemInput{{Description: "x", Qty: d("-1"), UnitPrice: d("10")}}, d("0.15"), ErrNonPositiveQty},
		{"negative price", []LineItemInput{{Description: "x", Qty: d("1"), UnitPrice: d("-0.01")}}, d("0.15"), ErrNegativePrice},
		{"vat below zero", []LineItemInput{valid}, d("-0.01"), ErrInvalidVatRate},
		{"vat above one", []LineItemInput{valid}, d("1.01"), ErrInvalidVatRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ComputeLines(tc.items, tc.vatRate)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
