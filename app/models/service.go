package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Service is one entry in the service catalog (mowing, hedge trimming, ...).
type Service struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"type:varchar(150);uniqueIndex" json:"name" validate:"required,min=2,max=150"`
	DefaultDurationMinutes int       `gorm:"not null;default:60" json:"default_duration_minutes" validate:"gt=0"`
	Active                 bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Service) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
