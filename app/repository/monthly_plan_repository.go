package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// monthlyPlanRepository implements the MonthlyPlanRepository interface
type monthlyPlanRepository struct {
	db *gorm.DB
}

// NewMonthlyPlanRepository creates a new monthly plan repository instance
func NewMonthlyPlanRepository(db *gorm.DB) MonthlyPlanRepository {
	return &monthlyPlanRepository{db: db}
}

func (r *monthlyPlanRepository) GetByID(id uuid.UUID) (*models.MonthlyPlan, error) {
	var plan models.MonthlyPlan
	err := r.db.Preload("Schedule").Preload("Schedule.Service").Preload("Quote").
		First(&plan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByCustomerID returns a customer's plans with schedule, quote, invoice
// links and occurrences, newest first.
func (r *monthlyPlanRepository) GetByCustomerID(customerID uint) ([]models.MonthlyPlan, error) {
	var plans []models.MonthlyPlan
	err := r.planQuery().
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&plans).Error
	return plans, err
}

// GetAll returns every plan for the admin view.
func (r *monthlyPlanRepository) GetAll() ([]models.MonthlyPlan, error) {
	var plans []models.MonthlyPlan
	err := r.planQuery().Preload("Customer").
		Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *monthlyPlanRepository) GetByStatus(status models.MonthlyPlanStatus) ([]models.MonthlyPlan, error) {
	var plans []models.MonthlyPlan
	err := r.db.Preload("Schedule").Preload("Schedule.Service").
		Where("status = ?", status).Find(&plans).Error
	return plans, err
}

func (r *monthlyPlanRepository) Update(plan *models.MonthlyPlan) error {
	return r.db.Save(plan).Error
}

func (r *monthlyPlanRepository) GetSchedule(planID uuid.UUID) ([]models.MonthlyPlanSchedule, error) {
	var schedule []models.MonthlyPlanSchedule
	err := r.db.Preload("Service").
		Where("plan_id = ?", planID).
		Order("day_of_week ASC").Order("start_time ASC").Find(&schedule).Error
	return schedule, err
}

// GetOccurrenceDates returns the set of dates (as YYYY-MM-DD keys) already
// materialized for a schedule slot inside [from, to]. The materializer uses
// it to skip dates that exist.
func (r *monthlyPlanRepository) GetOccurrenceDates(planID uuid.UUID, scheduleID uuid.UUID, from, to time.Time) (map[string]struct{}, error) {
	var occurrences []models.MonthlyPlanOccurrence
	err := r.db.Where("plan_id = ? AND schedule_id = ?", planID, scheduleID).
		Where("occurrence_date >= ? AND occurrence_date <= ?", from, to).
		Find(&occurrences).Error
	if err != nil {
		return nil, err
	}

	dates := make(map[string]struct{}, len(occurrences))
	for _, occ := range occurrences {
		dates[occ.OccurrenceDate.Format("2006-01-02")] = struct{}{}
	}
	return dates, nil
}

func (r *monthlyPlanRepository) GetOccurrencesInRange(planID uuid.UUID, from, to time.Time) ([]models.MonthlyPlanOccurrence, error) {
	var occurrences []models.MonthlyPlanOccurrence
	err := r.db.Preload("Booking").Preload("Booking.Service").
		Where("plan_id = ?", planID).
		Where("occurrence_date >= ? AND occurrence_date <= ?", from, to).
		Order("occurrence_date ASC").Find(&occurrences).Error
	return occurrences, err
}

func (r *monthlyPlanRepository) HasInvoiceForMonth(planID uuid.UUID, billingMonth time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.MonthlyPlanInvoice{}).
		Where("plan_id = ? AND billing_month = ?", planID, billingMonth).
		Count(&count).Error
	return count > 0, err
}

func (r *monthlyPlanRepository) planQuery() *gorm.DB {
	return r.db.
		Preload("Schedule").Preload("Schedule.Service").
		Preload("Quote").Preload("Quote.Items").
		Preload("Invoices").Preload("Invoices.Invoice").
		Preload("Occurrences").Preload("Occurrences.Booking")
}
