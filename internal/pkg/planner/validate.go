package planner

import (
	"errors"
	"strings"
	"time"

	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
)

// Plan-creation form errors. The whole submission is checked before anything
// is written, so a bad schedule row never leaves a half-created plan behind.
var (
	ErrSelectCustomer      = errors.New("Select a customer")
	ErrEnterTitle          = errors.New("Enter plan title")
	ErrEnterAddress        = errors.New("Enter service address")
	ErrDatesRequired       = errors.New("Start date and quote validity are required")
	ErrEmptySchedule       = errors.New("Add at least one schedule slot")
	ErrSelectService       = errors.New("Select a service for each schedule slot")
	ErrSelectTime          = errors.New("Select a time for each schedule slot")
	ErrInvalidDayOfWeek    = errors.New("Invalid day of week in schedule")
	ErrNonPositiveDuration = errors.New("Duration must be greater than zero")
	ErrNegativeUnitPrice   = errors.New("Unit price must be greater than or equal to zero")
)

// Plan-request form errors.
var (
	ErrShortStreetAddress = errors.New("Enter street name and number")
	ErrSelectArea         = errors.New("Select an area")
	ErrUnknownArea        = errors.New("Select an area from the list")
	ErrInvalidFrequency   = errors.New("Frequency must be between 1 and 7 visits per week")
)

func validatePlanInput(in PlanCreateInput) error {
	if in.CustomerID == 0 {
		return ErrSelectCustomer
	}
	if strings.TrimSpace(in.Title) == "" {
		return ErrEnterTitle
	}
	if strings.TrimSpace(in.Address) == "" {
		return ErrEnterAddress
	}
	if in.StartDate.IsZero() || in.ValidUntil.IsZero() {
		return ErrDatesRequired
	}
	if len(in.Schedule) == 0 {
		return ErrEmptySchedule
	}
	for _, row := range in.Schedule {
		if row.ServiceID == 0 {
			return ErrSelectService
		}
		if !validClockTime(row.StartTime) {
			return ErrSelectTime
		}
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			return ErrInvalidDayOfWeek
		}
		if row.DurationMinutes <= 0 {
			return ErrNonPositiveDuration
		}
		if row.UnitPrice.IsNegative() {
			return ErrNegativeUnitPrice
		}
	}
	return nil
}

func validateRequestInput(in RequestCreateInput, areas []string) error {
	if in.CustomerID == 0 {
		return ErrSelectCustomer
	}
	if strings.TrimSpace(in.Title) == "" {
		return ErrEnterTitle
	}
	if len(strings.TrimSpace(in.StreetAddress)) < 4 {
		return ErrShortStreetAddress
	}
	if strings.TrimSpace(in.Area) == "" {
		return ErrSelectArea
	}
	if !serviceareas.Contains(areas, in.Area) {
		return ErrUnknownArea
	}
	if in.FrequencyPerWeek < 1 || in.FrequencyPerWeek > 7 {
		return ErrInvalidFrequency
	}
	return nil
}

// validClockTime accepts "HH:MM" on a 24-hour clock.
func validClockTime(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
