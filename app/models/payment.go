package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentEFT   PaymentMethod = "eft"
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

// Payment records money received against an invoice. EFT payments uploaded by
// customers carry a proof-of-payment document path.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoice_id"`
	Method         PaymentMethod   `gorm:"type:varchar(10);not null" json:"method" validate:"oneof=eft cash card other"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Reference      string          `gorm:"type:varchar(100)" json:"reference" validate:"max=100"`
	ProofFilePath  string          `gorm:"type:varchar(255)" json:"proof_file_path" validate:"max=255"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payment) Validate() error {
	if p.Amount.IsNegative() || p.Amount.IsZero() {
		return ErrNonPositiveAmount
	}
	v := validator.New()

	return v.Struct(p)
}
