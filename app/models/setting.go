package models

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BusinessSettings is the single-row business configuration: identity, VAT,
// banking details, document number counters and the service-area list.
type BusinessSettings struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	BusinessName      string          `gorm:"type:varchar(150);not null" json:"business_name" validate:"required,min=2,max=150"`
	RegNumber         string          `gorm:"type:varchar(50)" json:"reg_number" validate:"max=50"`
	VatRegistered     bool            `gorm:"not null;default:false" json:"vat_registered"`
	VatNumber         string          `gorm:"type:varchar(50)" json:"vat_number" validate:"max=50"`
	VatRate           decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"vat_rate"`
	Address           string          `gorm:"type:varchar(255);not null" json:"address" validate:"required,min=5,max=255"`
	BankingDetails    string          `gorm:"type:text;not null" json:"banking_details" validate:"required,min=5"`
	NextQuoteNumber   int             `gorm:"not null;default:1" json:"next_quote_number"`
	NextInvoiceNumber int             `gorm:"not null;default:1" json:"next_invoice_number"`
	ServiceAreasJSON  string          `gorm:"column:service_areas;type:text" json:"-"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BusinessSettings) TableName() string {
	return "business_settings"
}

func (s *BusinessSettings) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// ServiceAreas decodes the custom service-area list. An empty or malformed
// column yields nil, which callers treat as "defaults only".
func (s *BusinessSettings) ServiceAreas() []string {
	if s.ServiceAreasJSON == "" {
		return nil
	}
	var areas []string
	if err := json.Unmarshal([]byte(s.ServiceAreasJSON), &areas); err != nil {
		return nil
	}
	return areas
}

// SetServiceAreas encodes the custom service-area list.
func (s *BusinessSettings) SetServiceAreas(areas []string) error {
	data, err := json.Marshal(areas)
	if err != nil {
		return err
	}
	s.ServiceAreasJSON = string(data)
	return nil
}

// Cached settings instance, loaded at boot and refreshed on every save.
var (
	businessSettings *BusinessSettings
	settingsMu       sync.RWMutex
)

// GetBusinessSettings returns the cached settings row.
func GetBusinessSettings() *BusinessSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return businessSettings
}

// LoadBusinessSettings loads (or seeds) the settings row into memory.
func LoadBusinessSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	var settings BusinessSettings
	err := db.First(&settings, 1).Error
	if err == gorm.ErrRecordNotFound {
		settings = BusinessSettings{
			ID:                1,
			BusinessName:      "Evergreen Garden Services",
			VatRegistered:     false,
			VatRate:           decimal.NewFromFloat(0.15),
			Address:           "Hartenbos, Western Cape",
			BankingDetails:    "Provided on request",
			NextQuoteNumber:   1,
			NextInvoiceNumber: 1,
		}
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to seed business settings: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load business settings: %w", err)
	}

	businessSettings = &settings
	return nil
}

// SaveBusinessSettings persists the row and refreshes the cache.
func SaveBusinessSettings(db *gorm.DB, settings *BusinessSettings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	settings.ID = 1
	if err := db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save business settings: %w", err)
	}
	businessSettings = settings
	return nil
}
