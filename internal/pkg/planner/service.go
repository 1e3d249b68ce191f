package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/billing"
	"github.com/evergreengarden/portal/internal/pkg/serviceareas"
)

var (
	ErrPlanNotActive  = errors.New("plan is not active")
	ErrUnknownService = errors.New("schedule references an unknown service")
)

// averageWeeksPerMonth prices a weekly slot on the originating quote. The
// month-end invoice bills actual visits; the quote only gives the customer a
// representative monthly figure.
var averageWeeksPerMonth = decimal.NewFromFloat(4.33)

// Service owns the monthly plan lifecycle: request intake, plan creation with
// its originating quote, recurrence materialization and the month-end invoice
// run.
type Service struct {
	db      *gorm.DB
	billing *billing.Service
}

// NewService creates a planner service sharing the billing service so plan
// quotes and invoices go through the same numbering and totals code.
func NewService(db *gorm.DB, billingSvc *billing.Service) *Service {
	return &Service{db: db, billing: billingSvc}
}

// CreateRequest records a customer's interest in a recurring plan. The street
// and area are validated against the configured service areas, then composed
// into the stored address.
func (s *Service) CreateRequest(in RequestCreateInput) (*models.MonthlyPlanRequest, error) {
	areas := serviceareas.Resolve(models.GetBusinessSettings().ServiceAreas())
	if err := validateRequestInput(in, areas); err != nil {
		return nil, err
	}

	request := &models.MonthlyPlanRequest{
		CustomerID:         in.CustomerID,
		Title:              strings.TrimSpace(in.Title),
		Address:            serviceareas.ComposeAddress(in.StreetAddress, in.Area),
		PreferredStartDate: in.PreferredStartDate,
		FrequencyPerWeek:   in.FrequencyPerWeek,
		Notes:              in.Notes,
		Status:             models.RequestRequested,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// TriageRequest moves a request through the triage pipeline and records the
// admin's working notes. Contacted stamps ContactedAt via the model.
func (s *Service) TriageRequest(requestID uuid.UUID, next models.PlanRequestStatus, adminNotes string, now time.Time) (*models.MonthlyPlanRequest, error) {
	var request models.MonthlyPlanRequest
	if err := s.db.First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}
	if err := request.Transition(next, now); err != nil {
		return nil, err
	}
	request.AdminNotes = adminNotes
	if err := s.db.Save(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// CreatePlanWithQuote creates the plan, its schedule rows, an anchor booking
// and the originating quote in one transaction. The plan enters life at
// "quoted"; when RequestID is set the linked request moves to quoted too.
func (s *Service) CreatePlanWithQuote(in PlanCreateInput, requestID *uuid.UUID, now time.Time) (*models.MonthlyPlan, error) {
	if err := validatePlanInput(in); err != nil {
		return nil, err
	}

	var plan *models.MonthlyPlan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		services, err := loadServices(tx, in.Schedule)
		if err != nil {
			return err
		}

		anchor := &models.Booking{
			CustomerID:        in.CustomerID,
			ServiceID:         in.Schedule[0].ServiceID,
			RequestedDatetime: combineDateTime(firstMatchingDate(in.StartDate, in.Schedule[0].DayOfWeek), in.Schedule[0].StartTime),
			Address:           in.Address,
			Notes:             strings.TrimSpace(in.Title),
			Status:            models.BookingConfirmed,
		}
		anchor.ConfirmedDatetime = &anchor.RequestedDatetime
		if err := tx.Create(anchor).Error; err != nil {
			return err
		}

		plan = &models.MonthlyPlan{
			CustomerID:      in.CustomerID,
			AnchorBookingID: anchor.ID,
			Title:           strings.TrimSpace(in.Title),
			Address:         strings.TrimSpace(in.Address),
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			VatRate:         in.VatRate,
			Status:          models.PlanQuoted,
		}
		if err := tx.Create(plan).Error; err != nil {
			return err
		}

		items := make([]billing.LineItemInput, 0, len(in.Schedule))
		for _, row := range in.Schedule {
			schedule := models.MonthlyPlanSchedule{
				PlanID:          plan.ID,
				ServiceID:       row.ServiceID,
				DayOfWeek:       row.DayOfWeek,
				StartTime:       row.StartTime,
				DurationMinutes: row.DurationMinutes,
				UnitPrice:       row.UnitPrice,
			}
			if err := tx.Create(&schedule).Error; err != nil {
				return err
			}
			plan.Schedule = append(plan.Schedule, schedule)

			items = append(items, billing.LineItemInput{
				Description: scheduleLineDescription(services[row.ServiceID], row),
				Qty:         averageWeeksPerMonth,
				UnitPrice:   row.UnitPrice,
			})
		}

		quote, err := s.billing.CreateQuoteTx(tx, billing.QuoteCreateInput{
			CustomerID: in.CustomerID,
			BookingID:  anchor.ID,
			ValidUntil: in.ValidUntil,
			VatRate:    in.VatRate,
			Items:      items,
		})
		if err != nil {
			return err
		}
		plan.QuoteID = &quote.ID
		plan.Quote = quote
		if err := tx.Model(&models.MonthlyPlan{}).Where("id = ?", plan.ID).Update("quote_id", quote.ID).Error; err != nil {
			return err
		}

		if requestID != nil {
			var request models.MonthlyPlanRequest
			if err := tx.First(&request, "id = ?", *requestID).Error; err != nil {
				return err
			}
			if err := request.Transition(models.RequestQuoted, now); err != nil {
				return err
			}
			request.QuotedPlanID = &plan.ID
			if err := tx.Save(&request).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// SetPlanStatus applies a lifecycle transition through the plan's transition
// table and returns the updated plan.
func (s *Service) SetPlanStatus(planID uuid.UUID, next models.MonthlyPlanStatus, now time.Time) (*models.MonthlyPlan, error) {
	var plan models.MonthlyPlan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		return nil, err
	}
	if err := plan.Transition(next, now); err != nil {
		return nil, err
	}
	if err := s.db.Save(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// loadServices resolves every service referenced by the schedule, keyed by
// ID. A dangling reference fails the whole submission.
func loadServices(tx *gorm.DB, schedule []ScheduleRowInput) (map[uint]models.Service, error) {
	ids := make([]uint, 0, len(schedule))
	for _, row := range schedule {
		ids = append(ids, row.ServiceID)
	}
	var services []models.Service
	if err := tx.Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	for _, row := range schedule {
		if _, ok := byID[row.ServiceID]; !ok {
			return nil, ErrUnknownService
		}
	}
	return byID, nil
}

// scheduleLineDescription renders one schedule row as a quote line, e.g.
// "Lawn mowing — weekly on Tuesday (08:00, 90 min)".
func scheduleLineDescription(svc models.Service, row ScheduleRowInput) string {
	day := time.Weekday(row.DayOfWeek).String()
	return fmt.Sprintf("%s — weekly on %s (%s, %d min)", svc.Name, day, row.StartTime, row.DurationMinutes)
}

// firstMatchingDate finds the first date on or after start that falls on the
// given weekday (0 = Sunday).
func firstMatchingDate(start time.Time, dayOfWeek int) time.Time {
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	offset := (dayOfWeek - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}
