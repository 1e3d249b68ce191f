package billing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems          = errors.New("at least one line item is required")
	ErrEmptyDescription = errors.New("every line item needs a description")
	ErrNonPositiveQty   = errors.New("quantity must be greater than zero")
	ErrNegativePrice    = errors.New("unit price must be greater than or equal to zero")
	ErrInvalidVatRate   = errors.New("vat rate must be between 0 and 1")
)

// Totals is the computed money summary of a document.
type Totals struct {
	Subtotal  decimal.Decimal
	VatAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputedLine is a line item with its server-computed total.
type ComputedLine struct {
	Description string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// ComputeLines validates the line items and computes per-line totals and the
// document totals. Amounts are rounded to cents per line, VAT once on the
// subtotal.
func ComputeLines(items []LineItemInput, vatRate decimal.Decimal) ([]ComputedLine, Totals, error) {
	if len(items) == 0 {
		return nil, Totals{}, ErrNoItems
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, Totals{}, ErrInvalidVatRate
	}

	lines := make([]ComputedLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, Totals{}, ErrEmptyDescription
		}
		if !item.Qty.IsPositive() {
			return nil, Totals{}, ErrNonPositiveQty
		}
		if item.UnitPrice.IsNegative() {
			return nil, Totals{}, ErrNegativePrice
		}

		lineTotal := item.Qty.Mul(item.UnitPrice).Round(2)
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, ComputedLine{
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}

	vatAmount := subtotal.Mul(vatRate).Round(2)
	return lines, Totals{
		Subtotal:  subtotal,
		VatAmount: vatAmount,
		Total:     subtotal.Add(vatAmount),
	}, nil
}
