package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/cache"
	"github.com/evergreengarden/portal/internal/pkg/database"
)

const (
	dashboardCacheKey = "dashboard:counts"
	dashboardCacheTTL = 60 * time.Second
)

type dashboardCounts struct {
	RequestedBookings int64 `json:"requested_bookings"`
	SentQuotes        int64 `json:"sent_quotes"`
	UnpaidInvoices    int64 `json:"unpaid_invoices"`
	PaidInvoices      int64 `json:"paid_invoices"`
	OverdueInvoices   int64 `json:"overdue_invoices"`
	ActivePlans       int64 `json:"active_plans"`
	OpenPlanRequests  int64 `json:"open_plan_requests"`
}

// HandleAdminDashboard returns the work-queue counts shown on the admin
// landing screen. Counts are cached briefly since the dashboard polls.
func HandleAdminDashboard(c *fiber.Ctx) error {
	if cached, err := cache.Get(dashboardCacheKey); err == nil && cached != "" {
		var counts dashboardCounts
		if err := json.Unmarshal([]byte(cached), &counts); err == nil {
			return c.JSON(counts)
		}
	}

	db := database.GetDB()
	var counts dashboardCounts

	db.Model(&models.Booking{}).Where("status = ?", models.BookingRequested).Count(&counts.RequestedBookings)
	db.Model(&models.Quote{}).Where("status = ?", models.QuoteSent).Count(&counts.SentQuotes)
	db.Model(&models.Invoice{}).Where("status IN ?", []models.InvoiceStatus{models.InvoiceSent, models.InvoiceOverdue}).Count(&counts.UnpaidInvoices)
	db.Model(&models.Invoice{}).Where("status = ?", models.InvoicePaid).Count(&counts.PaidInvoices)
	db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceOverdue).Count(&counts.OverdueInvoices)
	db.Model(&models.MonthlyPlan{}).Where("status = ?", models.PlanActive).Count(&counts.ActivePlans)
	db.Model(&models.MonthlyPlanRequest{}).Where("status IN ?", []models.PlanRequestStatus{models.RequestRequested, models.RequestContacted}).Count(&counts.OpenPlanRequests)

	if encoded, err := json.Marshal(counts); err == nil {
		if err := cache.Set(dashboardCacheKey, encoded, dashboardCacheTTL); err != nil {
			log.Warnf("dashboard counts not cached: %v", err)
		}
	}

	return c.JSON(counts)
}
