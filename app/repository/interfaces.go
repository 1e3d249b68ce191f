package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	ListCustomers(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// ServiceRepository defines the interface for the service catalog
type ServiceRepository interface {
	Create(service *models.Service) error
	GetByID(id uint) (*models.Service, error)
	GetActive() ([]models.Service, error)
	GetAll() ([]models.Service, error)
	Update(service *models.Service) error
}

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id uuid.UUID) (*models.Booking, error)
	GetByCustomerID(customerID uint) ([]models.Booking, error)
	List(filter BookingFilter) ([]models.Booking, error)
	Update(booking *models.Booking) error
	CountByStatus(status models.BookingStatus) (int64, error)
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	Status models.BookingStatus
	From   *time.Time
	To     *time.Time
}

// QuoteRepository defines the interface for quote operations
type QuoteRepository interface {
	GetByID(id uuid.UUID) (*models.Quote, error)
	GetByCustomerID(customerID uint) ([]models.Quote, error)
	GetAll() ([]models.Quote, error)
	Update(quote *models.Quote) error
	CountByStatus(status models.QuoteStatus) (int64, error)
}

// InvoiceRepository defines the interface for invoice operations
type InvoiceRepository interface {
	GetByID(id uuid.UUID) (*models.Invoice, error)
	GetByCustomerID(customerID uint, includeDrafts bool) ([]models.Invoice, error)
	GetAll() ([]models.Invoice, error)
	Update(invoice *models.Invoice) error
	CountByStatuses(statuses ...models.InvoiceStatus) (int64, error)
	CountOverdue(today time.Time) (int64, error)
	ListDueForOverdue(today time.Time) ([]models.Invoice, error)
}

// PaymentRepository defines the interface for payment records
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uuid.UUID) (*models.Payment, error)
	GetByInvoiceID(invoiceID uuid.UUID) ([]models.Payment, error)
}

// MonthlyPlanRepository defines the interface for monthly plan aggregates
type MonthlyPlanRepository interface {
	GetByID(id uuid.UUID) (*models.MonthlyPlan, error)
	GetByCustomerID(customerID uint) ([]models.MonthlyPlan, error)
	GetAll() ([]models.MonthlyPlan, error)
	GetByStatus(status models.MonthlyPlanStatus) ([]models.MonthlyPlan, error)
	Update(plan *models.MonthlyPlan) error
	GetSchedule(planID uuid.UUID) ([]models.MonthlyPlanSchedule, error)
	GetOccurrenceDates(planID uuid.UUID, scheduleID uuid.UUID, from, to time.Time) (map[string]struct{}, error)
	GetOccurrencesInRange(planID uuid.UUID, from, to time.Time) ([]models.MonthlyPlanOccurrence, error)
	HasInvoiceForMonth(planID uuid.UUID, billingMonth time.Time) (bool, error)
}

// PlanRequestRepository defines the interface for monthly plan requests
type PlanRequestRepository interface {
	Create(request *models.MonthlyPlanRequest) error
	GetByID(id uuid.UUID) (*models.MonthlyPlanRequest, error)
	GetByCustomerID(customerID uint) ([]models.MonthlyPlanRequest, error)
	GetAll() ([]models.MonthlyPlanRequest, error)
	Update(request *models.MonthlyPlanRequest) error
}

// SettingRepository defines the interface for business settings
type SettingRepository interface {
	Get() (*models.BusinessSettings, error)
	Save(settings *models.BusinessSettings) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User        UserRepository
	Service     ServiceRepository
	Booking     BookingRepository
	Quote       QuoteRepository
	Invoice     InvoiceRepository
	Payment     PaymentRepository
	MonthlyPlan MonthlyPlanRepository
	PlanRequest PlanRequestRepository
	Setting     SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Service:     NewServiceRepository(db),
		Booking:     NewBookingRepository(db),
		Quote:       NewQuoteRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Payment:     NewPaymentRepository(db),
		MonthlyPlan: NewMonthlyPlanRepository(db),
		PlanRequest: NewPlanRequestRepository(db),
		Setting:     NewSettingRepository(db),
	}
}
