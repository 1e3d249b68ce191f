package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyPlanSchedule is one weekly slot of a plan: "service X every Tuesday
// at 08:00 for 90 minutes at R350". Rows are immutable after plan creation.
type MonthlyPlanSchedule struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"plan_id"`
	ServiceID       uint            `gorm:"index;not null" json:"service_id"`
	DayOfWeek       int             `gorm:"not null" json:"day_of_week"`
	StartTime       string          `gorm:"type:varchar(5);not null" json:"start_time"`
	DurationMinutes int             `gorm:"not null" json:"duration_minutes"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (s *MonthlyPlanSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// MonthlyPlanOccurrence links a schedule slot to the concrete booking
// materialized for one date. The (plan, schedule, date) key is unique, which
// is what makes re-running the materializer for a month safe.
type MonthlyPlanOccurrence struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_slot_date" json:"plan_id"`
	ScheduleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_slot_date" json:"schedule_id"`
	BookingID      uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	OccurrenceDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_plan_slot_date" json:"occurrence_date"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

func (o *MonthlyPlanOccurrence) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// MonthlyPlanInvoice links a plan to the one consolidated invoice produced
// for a billing month. Unique on (plan, billing_month).
type MonthlyPlanInvoice struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_billing_month" json:"plan_id"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;index;not null" json:"invoice_id"`
	BillingMonth time.Time `gorm:"type:date;not null;uniqueIndex:idx_plan_billing_month" json:"billing_month"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

func (i *MonthlyPlanInvoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
