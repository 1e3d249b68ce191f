package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/billing"
)

// GenerateInvoices runs the month-end billing pass: every active plan with
// materialized visits in the month gets one consolidated draft invoice, one
// line per visit, due 14 days after month-end. Plans already invoiced for the
// month are skipped, so the run can be repeated; the return value counts only
// newly created invoices.
func (s *Service) GenerateInvoices(monthStart time.Time) (int, error) {
	first, last := MonthBounds(monthStart)
	dueDate := last.AddDate(0, 0, 14)

	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var plans []models.MonthlyPlan
		if err := tx.Where("status = ?", models.PlanActive).Find(&plans).Error; err != nil {
			return err
		}

		for _, plan := range plans {
			var count int64
			err := tx.Model(&models.MonthlyPlanInvoice{}).
				Where("plan_id = ? AND billing_month = ?", plan.ID, first).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			items, err := s.invoiceLinesForMonth(tx, plan, first, last)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				continue
			}

			invoice, err := s.billing.CreateInvoiceTx(tx, billing.InvoiceCreateInput{
				CustomerID: plan.CustomerID,
				IssueDate:  last,
				DueDate:    dueDate,
				VatRate:    plan.VatRate,
				Items:      items,
			})
			if err != nil {
				return err
			}

			link := models.MonthlyPlanInvoice{
				PlanID:       plan.ID,
				InvoiceID:    invoice.ID,
				BillingMonth: first,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// invoiceLinesForMonth turns a plan's materialized visits in the window into
// invoice lines, sorted by date. Cancelled visits are not billed.
func (s *Service) invoiceLinesForMonth(tx *gorm.DB, plan models.MonthlyPlan, from, to time.Time) ([]billing.LineItemInput, error) {
	var occurrences []models.MonthlyPlanOccurrence
	err := tx.Preload("Booking").
		Where("plan_id = ? AND occurrence_date BETWEEN ? AND ?", plan.ID, from, to).
		Find(&occurrences).Error
	if err != nil {
		return nil, err
	}
	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].OccurrenceDate.Before(occurrences[j].OccurrenceDate)
	})

	var schedule []models.MonthlyPlanSchedule
	if err := tx.Preload("Service").Where("plan_id = ?", plan.ID).Find(&schedule).Error; err != nil {
		return nil, err
	}
	rows := make(map[string]models.MonthlyPlanSchedule, len(schedule))
	for _, row := range schedule {
		rows[row.ID.String()] = row
	}

	items := make([]billing.LineItemInput, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.Booking != nil && occ.Booking.Status == models.BookingCancelled {
			continue
		}
		row, ok := rows[occ.ScheduleID.String()]
		if !ok {
			continue
		}
		serviceName := "Service"
		if row.Service != nil {
			serviceName = row.Service.Name
		}
		items = append(items, billing.LineItemInput{
			Description: visitLineDescription(serviceName, occ.OccurrenceDate, plan.Title),
			Qty:         decimal.NewFromInt(1),
			UnitPrice:   row.UnitPrice,
		})
	}
	return items, nil
}

// visitLineDescription renders one billed visit, e.g.
// "Lawn mowing — 04 Mar 2026 (Smith residence weekly care)".
func visitLineDescription(serviceName string, date time.Time, planTitle string) string {
	return fmt.Sprintf("%s — %s (%s)", serviceName, date.Format("02 Jan 2006"), planTitle)
}
