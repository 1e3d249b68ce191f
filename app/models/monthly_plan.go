package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MonthlyPlanStatus string

const (
	PlanDraft     MonthlyPlanStatus = "draft"
	PlanQuoted    MonthlyPlanStatus = "quoted"
	PlanActive    MonthlyPlanStatus = "active"
	PlanPaused    MonthlyPlanStatus = "paused"
	PlanCancelled MonthlyPlanStatus = "cancelled"
	PlanCompleted MonthlyPlanStatus = "completed"
)

// MonthlyPlan is a recurring weekly service contract. It is created together
// with its schedule rows and an originating quote in one transaction and
// enters life at "quoted".
type MonthlyPlan struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      uint              `gorm:"index;not null" json:"customer_id"`
	AnchorBookingID uuid.UUID         `gorm:"type:uuid;not null" json:"anchor_booking_id"`
	QuoteID         *uuid.UUID        `gorm:"type:uuid;default:null" json:"quote_id"`
	Title           string            `gorm:"type:varchar(150);not null" json:"title"`
	Address         string            `gorm:"type:varchar(255);not null" json:"address"`
	StartDate       time.Time         `gorm:"type:date;not null" json:"start_date"`
	EndDate         *time.Time        `gorm:"type:date;default:null" json:"end_date"`
	VatRate         decimal.Decimal   `gorm:"type:numeric(5,4);not null" json:"vat_rate"`
	Status          MonthlyPlanStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ActivatedAt     *time.Time        `gorm:"default:null" json:"activated_at"`
	PausedAt        *time.Time        `gorm:"default:null" json:"paused_at"`
	CancelledAt     *time.Time        `gorm:"default:null" json:"cancelled_at"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Customer    *User                  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Quote       *Quote                 `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	Schedule    []MonthlyPlanSchedule  `gorm:"foreignKey:PlanID" json:"schedule,omitempty"`
	Occurrences []MonthlyPlanOccurrence `gorm:"foreignKey:PlanID" json:"occurrences,omitempty"`
	Invoices    []MonthlyPlanInvoice   `gorm:"foreignKey:PlanID" json:"invoices,omitempty"`
}

func (p *MonthlyPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// planTransitions is the authoritative transition table. Cancelled and
// completed are terminal; active and paused toggle freely.
var planTransitions = map[MonthlyPlanStatus][]MonthlyPlanStatus{
	PlanDraft:  {PlanQuoted, PlanCancelled},
	PlanQuoted: {PlanActive, PlanCancelled, PlanCompleted},
	PlanActive: {PlanPaused, PlanCancelled, PlanCompleted},
	PlanPaused: {PlanActive, PlanCancelled, PlanCompleted},
}

// CanTransitionTo reports whether the plan may move to the given status.
func (p *MonthlyPlan) CanTransitionTo(next MonthlyPlanStatus) bool {
	for _, allowed := range planTransitions[p.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition applies a status change through the transition table, stamping
// the matching timestamp. Returns ErrInvalidTransition for anything the table
// does not allow.
func (p *MonthlyPlan) Transition(next MonthlyPlanStatus, now time.Time) error {
	if !p.CanTransitionTo(next) {
		return fmt.Errorf("monthly plan %s -> %s: %w", p.Status, next, ErrInvalidTransition)
	}
	p.Status = next
	switch next {
	case PlanActive:
		p.ActivatedAt = &now
		p.PausedAt = nil
	case PlanPaused:
		p.PausedAt = &now
	case PlanCancelled:
		p.CancelledAt = &now
	}
	return nil
}

// CoversDate reports whether the given date falls inside the plan's service
// window.
func (p *MonthlyPlan) CoversDate(date time.Time) bool {
	if date.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && date.After(*p.EndDate) {
		return false
	}
	return true
}
