package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) GetByID(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").Preload("Payments").Preload("Booking").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByCustomerID returns a customer's invoices. Drafts are hidden from
// customers; admins pass includeDrafts.
func (r *invoiceRepository) GetByCustomerID(customerID uint, includeDrafts bool) ([]models.Invoice, error) {
	query := r.db.Preload("Items").Preload("Payments").
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if !includeDrafts {
		query = query.Where("status <> ?", models.InvoiceDraft)
	}

	var invoices []models.Invoice
	err := query.Find(&invoices).Error
	return invoices, err
}

// GetAll returns every invoice with items, payments and customer.
func (r *invoiceRepository) GetAll() ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").Preload("Payments").Preload("Customer").
		Order("created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Update(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}

func (r *invoiceRepository) CountByStatuses(statuses ...models.InvoiceStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// CountOverdue counts open invoices past their due date.
func (r *invoiceRepository) CountOverdue(today time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).
		Where("status IN ?", []models.InvoiceStatus{models.InvoiceSent, models.InvoiceOverdue}).
		Where("due_date < ?", today).Count(&count).Error
	return count, err
}

// ListDueForOverdue returns sent invoices whose due date has passed, for the
// background sweep that flips them to overdue.
func (r *invoiceRepository) ListDueForOverdue(today time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("status = ?", models.InvoiceSent).
		Where("due_date < ?", today).Find(&invoices).Error
	return invoices, err
}
