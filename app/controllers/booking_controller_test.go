package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/usercontext"
)

func setupTestApp(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.ProviderAccount{},
		&models.Service{},
		&models.Booking{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.MonthlyPlan{},
		&models.MonthlyPlanSchedule{},
		&models.MonthlyPlanOccurrence{},
		&models.MonthlyPlanInvoice{},
		&models.MonthlyPlanRequest{},
		&models.BusinessSettings{},
	)
	require.NoError(t, err)
	require.NoError(t, models.LoadBusinessSettings(db))

	database.SetDB(db)
	repository.InitializeFactory(db)

	// Notification mail goes nowhere in tests.
	originalQueueEmail := queueEmail
	queueEmail = func(to, subject, body string) error { return nil }
	t.Cleanup(func() { queueEmail = originalQueueEmail })

	return db
}

// newTestApp builds a fiber app that runs handlers as the given user.
func newTestApp(user *models.User, isAdmin bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
				UserID:     user.ID,
				Username:   user.Name,
				IsLoggedIn: true,
				IsAdmin:    isAdmin,
			})
			c.Locals(usercontext.KeyFromProtected, true)
			c.Locals(usercontext.KeyIsAdmin, isAdmin)
		}
		return c.Next()
	})
	return app
}

func seedTestCustomer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Pieter van Wyk",
		Email:    fmt.Sprintf("pieter+%d@example.com", time.Now().UnixNano()),
		Password: "irrelevant",
		Role:     models.ROLE_CUSTOMER,
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTestService(t *testing.T, db *gorm.DB, name string) *models.Service {
	t.Helper()
	svc := &models.Service{Name: name, DefaultDurationMinutes: 60, Active: true}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHandleCreateBookingValidation(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	service := seedTestService(t, db, "Lawn mowing")

	inactive := &models.Service{Name: "Old offering", DefaultDurationMinutes: 30, Active: false}
	require.NoError(t, db.Create(inactive).Error)
	// The column's default:true overrides the zero-value false on insert.
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	app := newTestApp(customer, false)
	app.Post("/bookings", HandleCreateBooking)

	future := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	valid := map[string]any{
		"service_id":         service.ID,
		"requested_datetime": future,
		"street_address":     "12 Protea Street",
		"area":               "Dana Bay",
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		message string
	}{
		{"missing service", func(m map[string]any) { m["service_id"] = 0 }, "Select a service"},
		{"inactive service", func(m map[string]any) { m["service_id"] = inactive.ID }, "Select a service"},
		{"past datetime", func(m map[string]any) { m["requested_datetime"] = "2020-01-01T08:00:00Z" }, "Select a date and time in the future"},
		{"short street", func(m map[string]any) { m["street_address"] = "12" }, "Enter street name and number"},
		{"missing area", func(m map[string]any) { m["area"] = "  " }, "Select an area"},
		{"unknown area", func(m map[string]any) { m["area"] = "Cape Town CBD" }, "Select an area from the list"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]any{}
			for k, v := range valid {
				payload[k] = v
			}
			tc.mutate(payload)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bookings", payload), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tc.message, body["message"])
		})
	}

	var count int64
	db.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleCreateBookingComposesAddress(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	service := seedTestService(t, db, "Hedge trimming")

	app := newTestApp(customer, false)
	app.Post("/bookings", HandleCreateBooking)

	payload := map[string]any{
		"service_id":         service.ID,
		"requested_datetime": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"street_address":     "7 Aalwyn Close",
		"area":               "Hartenbos",
		"notes":              "Gate code 4411",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bookings", payload), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var booking models.Booking
	require.NoError(t, db.First(&booking).Error)
	assert.Equal(t, "7 Aalwyn Close, Hartenbos, Western Cape", booking.Address)
	assert.Equal(t, models.BookingRequested, booking.Status)
	assert.Equal(t, customer.ID, booking.CustomerID)
}

func TestHandleCancelMyBooking(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	other := seedTestCustomer(t, db)
	service := seedTestService(t, db, "Tree felling")

	booking := &models.Booking{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		RequestedDatetime: time.Now().Add(24 * time.Hour),
		Address:           "3 Dias Road, Diaz Beach, Western Cape",
		Status:            models.BookingRequested,
	}
	require.NoError(t, db.Create(booking).Error)

	app := newTestApp(customer, false)
	app.Post("/bookings/:id/cancel", HandleCancelMyBooking)

	// Another customer's booking reads as not found, not forbidden.
	otherApp := newTestApp(other, false)
	otherApp.Post("/bookings/:id/cancel", HandleCancelMyBooking)
	resp, err := otherApp.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+booking.ID.String()+"/cancel", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+booking.ID.String()+"/cancel", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingCancelled, stored.Status)

	// Cancelled is terminal.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/bookings/"+booking.ID.String()+"/cancel", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleAdminSetBookingStatus(t *testing.T) {
	db := setupTestApp(t)
	customer := seedTestCustomer(t, db)
	admin := &models.User{
		Name:     "Anri Smit",
		Email:    fmt.Sprintf("anri+%d@example.com", time.Now().UnixNano()),
		Password: "irrelevant",
		Role:     models.ROLE_ADMIN,
		Status:   models.STATUS_ACTIVE,
	}
	require.NoError(t, db.Create(admin).Error)
	service := seedTestService(t, db, "Irrigation check")

	booking := &models.Booking{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		RequestedDatetime: time.Now().Add(24 * time.Hour),
		Address:           "9 Strand Street, Reebok, Western Cape",
		Status:            models.BookingRequested,
	}
	require.NoError(t, db.Create(booking).Error)

	app := newTestApp(admin, true)
	app.Post("/admin/bookings/:id/status", HandleAdminSetBookingStatus)

	target := "/admin/bookings/" + booking.ID.String() + "/status"
	resp, err := app.Test(jsonRequest(t, http.MethodPost, target, map[string]any{"status": "confirmed"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingConfirmed, stored.Status)
	require.NotNil(t, stored.ConfirmedDatetime)

	// requested -> completed skips confirmation and is rejected.
	booking2 := &models.Booking{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		RequestedDatetime: time.Now().Add(48 * time.Hour),
		Address:           "9 Strand Street, Reebok, Western Cape",
		Status:            models.BookingRequested,
	}
	require.NoError(t, db.Create(booking2).Error)
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/admin/bookings/"+booking2.ID.String()+"/status", map[string]any{"status": "completed"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
