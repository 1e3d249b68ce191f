package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/evergreengarden/portal/app/controllers"
	"github.com/evergreengarden/portal/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	v1 := api.Group("/v1")

	h.registerAuthRoutes(v1)
	h.registerPublicRoutes(v1)
	h.registerCustomerRoutes(v1)
	h.registerAdminRoutes(v1)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) registerAuthRoutes(v1 fiber.Router) {
	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Get("/activate", controllers.HandleActivate)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", middleware.RequireAPISessionAuth, controllers.HandleLogout)
}

func (h ApiRouter) registerPublicRoutes(v1 fiber.Router) {
	v1.Get("/settings", controllers.HandlePublicSettings)
	v1.Get("/services", controllers.HandleListServices)
}

func (h ApiRouter) registerCustomerRoutes(v1 fiber.Router) {
	me := v1.Group("/me", middleware.RequireAPISessionAuth)
	me.Get("/", controllers.HandleGetProfile)
	me.Put("/", controllers.HandleUpdateProfile)

	bookings := v1.Group("/bookings", middleware.RequireAPISessionAuth)
	bookings.Post("/", controllers.HandleCreateBooking)
	bookings.Get("/", controllers.HandleListMyBookings)
	bookings.Post("/:id/cancel", controllers.HandleCancelMyBooking)

	quotes := v1.Group("/quotes", middleware.RequireAPISessionAuth)
	quotes.Get("/", controllers.HandleListMyQuotes)
	quotes.Post("/:id/decision", controllers.HandleQuoteDecision)

	invoices := v1.Group("/invoices", middleware.RequireAPISessionAuth)
	invoices.Get("/", controllers.HandleListMyInvoices)
	invoices.Post("/:id/proof", controllers.HandleUploadProofOfPayment)

	payments := v1.Group("/payments", middleware.RequireAPISessionAuth)
	payments.Get("/:id/proof-link", controllers.HandleProofOfPaymentLink)

	planRequests := v1.Group("/plan-requests", middleware.RequireAPISessionAuth)
	planRequests.Post("/", controllers.HandleCreatePlanRequest)
	planRequests.Get("/", controllers.HandleListMyPlanRequests)

	plans := v1.Group("/plans", middleware.RequireAPISessionAuth)
	plans.Get("/", controllers.HandleListMyPlans)
	plans.Get("/:id", controllers.HandleGetMyPlan)
}

func (h ApiRouter) registerAdminRoutes(v1 fiber.Router) {
	admin := v1.Group("/admin", middleware.RequireAdminAPI)

	admin.Get("/dashboard", controllers.HandleAdminDashboard)

	admin.Get("/settings", controllers.HandleGetSettings)
	admin.Put("/settings", controllers.HandleUpdateSettings)

	admin.Get("/services", controllers.HandleAdminListServices)
	admin.Post("/services", controllers.HandleCreateService)
	admin.Put("/services/:id", controllers.HandleUpdateService)

	admin.Get("/bookings", controllers.HandleAdminListBookings)
	admin.Post("/bookings/:id/status", controllers.HandleAdminSetBookingStatus)

	admin.Get("/quotes", controllers.HandleAdminListQuotes)
	admin.Post("/quotes", controllers.HandleAdminCreateQuote)
	admin.Post("/quotes/:id/status", controllers.HandleAdminSetQuoteStatus)
	admin.Post("/quotes/:id/invoice", controllers.HandleAdminCreateInvoiceFromQuote)

	admin.Get("/invoices", controllers.HandleAdminListInvoices)
	admin.Post("/invoices", controllers.HandleAdminCreateInvoice)
	admin.Post("/invoices/:id/send", controllers.HandleAdminSendInvoice)
	admin.Post("/invoices/:id/void", controllers.HandleAdminVoidInvoice)

	admin.Post("/payments", controllers.HandleAdminRecordPayment)
	admin.Get("/payments/:id/proof-link", controllers.HandleProofOfPaymentLink)

	admin.Get("/plan-requests", controllers.HandleAdminListPlanRequests)
	admin.Post("/plan-requests/:id/triage", controllers.HandleAdminTriageRequest)

	admin.Get("/plans", controllers.HandleAdminListPlans)
	admin.Post("/plans", controllers.HandleAdminCreatePlan)
	admin.Get("/plans/:id", controllers.HandleAdminGetPlan)
	admin.Post("/plans/:id/status", controllers.HandleAdminSetPlanStatus)
	admin.Post("/plans/generate-bookings", controllers.HandleAdminGenerateBookings)
	admin.Post("/invoices/generate-monthly", controllers.HandleAdminGenerateInvoices)
}
