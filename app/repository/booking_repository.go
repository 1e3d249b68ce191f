package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// bookingRepository implements the BookingRepository interface
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository instance
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

func (r *bookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Preload("Service").First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByCustomerID returns a customer's bookings, newest first.
func (r *bookingRepository) GetByCustomerID(customerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Service").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// List returns bookings for the admin view, optionally filtered by status
// and requested-datetime window.
func (r *bookingRepository) List(filter BookingFilter) ([]models.Booking, error) {
	query := r.db.Preload("Service").Preload("Customer").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("requested_datetime >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("requested_datetime <= ?", *filter.To)
	}

	var bookings []models.Booking
	err := query.Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

func (r *bookingRepository) CountByStatus(status models.BookingStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Booking{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
