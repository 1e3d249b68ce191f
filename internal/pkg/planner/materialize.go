package planner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// GenerateBookings materializes the plan's weekly schedule into confirmed
// bookings for the month containing monthStart. Dates that already have an
// occurrence row are skipped, so re-running for the same month is safe; the
// return value counts only newly created bookings.
func (s *Service) GenerateBookings(planID uuid.UUID, monthStart time.Time) (int, error) {
	first, last := MonthBounds(monthStart)

	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var plan models.MonthlyPlan
		if err := tx.First(&plan, "id = ?", planID).Error; err != nil {
			return err
		}
		if plan.Status != models.PlanActive {
			return ErrPlanNotActive
		}

		var schedule []models.MonthlyPlanSchedule
		if err := tx.Where("plan_id = ?", planID).Order("day_of_week, start_time").Find(&schedule).Error; err != nil {
			return err
		}

		for _, row := range schedule {
			existing, err := occurrenceDates(tx, planID, row.ID, first, last)
			if err != nil {
				return err
			}

			for date := firstMatchingDate(first, row.DayOfWeek); !date.After(last); date = date.AddDate(0, 0, 7) {
				if !plan.CoversDate(date) {
					continue
				}
				if _, ok := existing[dateKey(date)]; ok {
					continue
				}

				booking := models.Booking{
					CustomerID:        plan.CustomerID,
					ServiceID:         row.ServiceID,
					RequestedDatetime: combineDateTime(date, row.StartTime),
					Address:           plan.Address,
					Notes:             plan.Title,
					Status:            models.BookingConfirmed,
				}
				booking.ConfirmedDatetime = &booking.RequestedDatetime
				if err := tx.Create(&booking).Error; err != nil {
					return err
				}

				occurrence := models.MonthlyPlanOccurrence{
					PlanID:         planID,
					ScheduleID:     row.ID,
					BookingID:      booking.ID,
					OccurrenceDate: date,
				}
				if err := tx.Create(&occurrence).Error; err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// occurrenceDates collects the dates already materialized for one schedule
// row inside the window, keyed by date string.
func occurrenceDates(tx *gorm.DB, planID, scheduleID uuid.UUID, from, to time.Time) (map[string]struct{}, error) {
	var occurrences []models.MonthlyPlanOccurrence
	err := tx.Where("plan_id = ? AND schedule_id = ? AND occurrence_date BETWEEN ? AND ?", planID, scheduleID, from, to).
		Find(&occurrences).Error
	if err != nil {
		return nil, err
	}
	dates := make(map[string]struct{}, len(occurrences))
	for _, occ := range occurrences {
		dates[dateKey(occ.OccurrenceDate)] = struct{}{}
	}
	return dates, nil
}
