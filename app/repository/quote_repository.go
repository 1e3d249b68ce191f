package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// quoteRepository implements the QuoteRepository interface
type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository instance
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) GetByID(id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Items").Preload("Booking").First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByCustomerID returns a customer's quotes with items, newest first.
func (r *quoteRepository) GetByCustomerID(customerID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.Preload("Items").Preload("Booking").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

// GetAll returns every quote with items and customer, newest first.
func (r *quoteRepository) GetAll() ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.Preload("Items").Preload("Booking").Preload("Customer").
		Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

func (r *quoteRepository) Update(quote *models.Quote) error {
	return r.db.Save(quote).Error
}

func (r *quoteRepository) CountByStatus(status models.QuoteStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Quote{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
