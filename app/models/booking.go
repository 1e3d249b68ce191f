package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a single dated service visit, either requested ad hoc by a
// customer or materialized from a monthly plan schedule.
type Booking struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID        uint          `gorm:"index;not null" json:"customer_id"`
	ServiceID         uint          `gorm:"index;not null" json:"service_id" validate:"required"`
	RequestedDatetime time.Time     `gorm:"not null" json:"requested_datetime" validate:"required"`
	ConfirmedDatetime *time.Time    `gorm:"default:null" json:"confirmed_datetime"`
	Address           string        `gorm:"type:varchar(255);not null" json:"address" validate:"required,min=5,max=255"`
	Notes             string        `gorm:"type:text" json:"notes" validate:"max=1000"`
	Status            BookingStatus `gorm:"type:varchar(20);not null;default:'requested';index" json:"status"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	Service  *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Customer *User    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Booking) Validate() error {
	v := validator.New()

	return v.Struct(b)
}

// bookingTransitions lists the allowed status changes. Requested bookings can
// be confirmed or cancelled; confirmed ones completed or cancelled.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingRequested: {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether the booking may move to the given status.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[b.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
