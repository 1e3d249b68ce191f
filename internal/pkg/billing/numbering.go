package billing

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

// nextQuoteNumber allocates the next quote number inside tx. The increment
// runs first so the settings row stays locked for the rest of the
// transaction.
func nextQuoteNumber(tx *gorm.DB) (string, error) {
	if err := tx.Model(&models.BusinessSettings{}).Where("id = ?", 1).
		UpdateColumn("next_quote_number", gorm.Expr("next_quote_number + 1")).Error; err != nil {
		return "", fmt.Errorf("failed to advance quote counter: %w", err)
	}

	var settings models.BusinessSettings
	if err := tx.First(&settings, 1).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("Q-%05d", settings.NextQuoteNumber-1), nil
}

// nextInvoiceNumber allocates the next invoice number inside tx.
func nextInvoiceNumber(tx *gorm.DB) (string, error) {
	if err := tx.Model(&models.BusinessSettings{}).Where("id = ?", 1).
		UpdateColumn("next_invoice_number", gorm.Expr("next_invoice_number + 1")).Error; err != nil {
		return "", fmt.Errorf("failed to advance invoice counter: %w", err)
	}

	var settings models.BusinessSettings
	if err := tx.First(&settings, 1).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%05d", settings.NextInvoiceNumber-1), nil
}
