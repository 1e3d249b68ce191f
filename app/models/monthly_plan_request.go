package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanRequestStatus string

const (
	RequestRequested PlanRequestStatus = "requested"
	RequestContacted PlanRequestStatus = "contacted"
	RequestQuoted    PlanRequestStatus = "quoted"
	RequestClosed    PlanRequestStatus = "closed"
)

// MonthlyPlanRequest is a customer's expression of interest in a recurring
// plan, triaged by admin staff: requested -> contacted -> quoted -> closed.
// Stages may be skipped forward but never revisited.
type MonthlyPlanRequest struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID         uint              `gorm:"index;not null" json:"customer_id"`
	Title              string            `gorm:"type:varchar(150);not null" json:"title" validate:"required,min=2,max=150"`
	Address            string            `gorm:"type:varchar(255);not null" json:"address" validate:"required,min=5,max=255"`
	PreferredStartDate *time.Time        `gorm:"type:date;default:null" json:"preferred_start_date"`
	FrequencyPerWeek   int               `gorm:"not null" json:"frequency_per_week" validate:"min=1,max=7"`
	Notes              string            `gorm:"type:text" json:"notes" validate:"max=1000"`
	Status             PlanRequestStatus `gorm:"type:varchar(20);not null;default:'requested';index" json:"status"`
	AdminNotes         string            `gorm:"type:text" json:"admin_notes"`
	ContactedAt        *time.Time        `gorm:"default:null" json:"contacted_at"`
	QuotedPlanID       *uuid.UUID        `gorm:"type:uuid;default:null" json:"quoted_plan_id"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (r *MonthlyPlanRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *MonthlyPlanRequest) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// requestTransitions allows skipping forward (an admin may close a request
// straight from requested) but never moving backwards or out of closed.
var requestTransitions = map[PlanRequestStatus][]PlanRequestStatus{
	RequestRequested: {RequestContacted, RequestQuoted, RequestClosed},
	RequestContacted: {RequestQuoted, RequestClosed},
	RequestQuoted:    {RequestClosed},
}

// CanTransitionTo reports whether the request may move to the given status.
func (r *MonthlyPlanRequest) CanTransitionTo(next PlanRequestStatus) bool {
	for _, allowed := range requestTransitions[r.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition applies a triage step, stamping ContactedAt when entering
// contacted. QuotedPlanID is set by the caller when entering quoted.
func (r *MonthlyPlanRequest) Transition(next PlanRequestStatus, now time.Time) error {
	if !r.CanTransitionTo(next) {
		return fmt.Errorf("plan request %s -> %s: %w", r.Status, next, ErrInvalidTransition)
	}
	r.Status = next
	if next == RequestContacted {
		r.ContactedAt = &now
	}
	return nil
}
