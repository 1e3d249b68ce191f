package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
	QuoteExpired  QuoteStatus = "expired"
)

// Quote is a priced offer for a booking (or for a monthly plan, via the plan's
// anchor booking). Totals are computed server side from the items.
type Quote struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"quote_number"`
	CustomerID  uint            `gorm:"index;not null" json:"customer_id"`
	BookingID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"booking_id"`
	Status      QuoteStatus     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ValidUntil  time.Time       `gorm:"type:date;not null" json:"valid_until"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	VatRate     decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"vat_rate"`
	VatAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"vat_amount"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items    []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Booking  *Booking    `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Customer *User       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"quote_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the quote is past its validity date without
// having been accepted or declined.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status != QuoteDraft && q.Status != QuoteSent {
		return false
	}
	return q.ValidUntil.Before(now.Truncate(24 * time.Hour))
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft: {QuoteSent, QuoteExpired},
	QuoteSent:  {QuoteAccepted, QuoteDeclined, QuoteExpired},
}

// CanTransitionTo reports whether the quote may move to the given status.
func (q *Quote) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[q.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
