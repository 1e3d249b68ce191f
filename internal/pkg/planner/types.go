package planner

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleRowInput is one weekly slot as submitted on the plan form.
type ScheduleRowInput struct {
	ServiceID       uint            `json:"service_id"`
	DayOfWeek       int             `json:"day_of_week"`
	StartTime       string          `json:"start_time"`
	DurationMinutes int             `json:"duration_minutes"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// PlanCreateInput is the full plan-creation form: plan fields, quote validity
// and the weekly schedule. One call creates plan, schedule and quote.
type PlanCreateInput struct {
	CustomerID uint               `json:"customer_id"`
	Title      string             `json:"title"`
	Address    string             `json:"address"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    *time.Time         `json:"end_date"`
	ValidUntil time.Time          `json:"valid_until"`
	VatRate    decimal.Decimal    `json:"vat_rate"`
	Schedule   []ScheduleRowInput `json:"schedule"`
}

// RequestCreateInput is the customer's monthly plan interest form. The street
// and area are validated separately, then composed into one address string.
type RequestCreateInput struct {
	CustomerID         uint       `json:"customer_id"`
	Title              string     `json:"title"`
	StreetAddress      string     `json:"street_address"`
	Area               string     `json:"area"`
	PreferredStartDate *time.Time `json:"preferred_start_date"`
	FrequencyPerWeek   int        `json:"frequency_per_week"`
	Notes              string     `json:"notes"`
}
