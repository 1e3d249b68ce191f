package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceVoid    InvoiceStatus = "void"
)

// Invoice is a billable document, created standalone, from an accepted quote,
// or consolidated from a monthly plan's serviced occurrences.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"invoice_number"`
	CustomerID    uint            `gorm:"index;not null" json:"customer_id"`
	BookingID     *uuid.UUID      `gorm:"type:uuid;index;default:null" json:"booking_id"`
	QuoteID       *uuid.UUID      `gorm:"type:uuid;index;default:null" json:"quote_id"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	VatRate       decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"vat_rate"`
	VatAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"vat_amount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaidAt        *time.Time      `gorm:"default:null" json:"paid_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	Booking  *Booking      `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Customer *User         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoice_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the invoice is unpaid past its due date. The
// stored status may still say "sent"; a background sweep flips it.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status != InvoiceSent && i.Status != InvoiceOverdue {
		return false
	}
	return i.DueDate.Before(now.Truncate(24 * time.Hour))
}

// PaidTotal sums all recorded payments against the invoice.
func (i *Invoice) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoiceSent, InvoiceVoid},
	InvoiceSent:    {InvoiceOverdue, InvoicePaid, InvoiceVoid},
	InvoiceOverdue: {InvoicePaid, InvoiceVoid},
}

// CanTransitionTo reports whether the invoice may move to the given status.
func (i *Invoice) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[i.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
