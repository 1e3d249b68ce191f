package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput is one quote or invoice line as submitted by the admin.
// LineTotal is always computed server side.
type LineItemInput struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// QuoteCreateInput bundles everything needed to create a quote with items in
// one transaction.
type QuoteCreateInput struct {
	CustomerID uint            `json:"customer_id"`
	BookingID  uuid.UUID       `json:"booking_id"`
	ValidUntil time.Time       `json:"valid_until"`
	VatRate    decimal.Decimal `json:"vat_rate"`
	Items      []LineItemInput `json:"items"`
}

// InvoiceCreateInput bundles everything needed to create an invoice with
// items in one transaction.
type InvoiceCreateInput struct {
	CustomerID uint            `json:"customer_id"`
	BookingID  *uuid.UUID      `json:"booking_id"`
	QuoteID    *uuid.UUID      `json:"quote_id"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	VatRate    decimal.Decimal `json:"vat_rate"`
	Items      []LineItemInput `json:"items"`
}

// PaymentInput records money received against an invoice.
type PaymentInput struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	ProofFilePath string          `json:"proof_file_path"`
}
