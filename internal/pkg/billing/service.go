package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreengarden/portal/app/models"
)

var (
	ErrQuoteNotActionable = errors.New("quote can no longer be accepted or declined")
	ErrInvoiceNotPayable  = errors.New("invoice cannot accept payments in its current status")
)

// Service owns quote, invoice and payment lifecycles. Every multi-row write
// happens inside one transaction; numbers come from the settings counters.
type Service struct {
	db *gorm.DB
}

// NewService creates a billing service from a GORM DB handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateQuoteWithItems creates a quote and its items atomically and returns
// the new quote. The quote starts at "sent": quotes in this business go out
// the moment they are written.
func (s *Service) CreateQuoteWithItems(input QuoteCreateInput) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		quote, err = s.createQuoteTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// CreateQuoteTx exposes quote creation for callers that already hold a
// transaction (plan creation writes plan, schedule and quote in one pass).
func (s *Service) CreateQuoteTx(tx *gorm.DB, input QuoteCreateInput) (*models.Quote, error) {
	return s.createQuoteTx(tx, input)
}

func (s *Service) createQuoteTx(tx *gorm.DB, input QuoteCreateInput) (*models.Quote, error) {
	lines, totals, err := ComputeLines(input.Items, input.VatRate)
	if err != nil {
		return nil, err
	}

	number, err := nextQuoteNumber(tx)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		QuoteNumber: number,
		CustomerID:  input.CustomerID,
		BookingID:   input.BookingID,
		Status:      models.QuoteSent,
		ValidUntil:  input.ValidUntil,
		Subtotal:    totals.Subtotal,
		VatRate:     input.VatRate,
		VatAmount:   totals.VatAmount,
		Total:       totals.Total,
	}
	if err := tx.Create(quote).Error; err != nil {
		return nil, err
	}

	for _, line := range lines {
		item := models.QuoteItem{
			QuoteID:     quote.ID,
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}
		quote.Items = append(quote.Items, item)
	}
	return quote, nil
}

// CreateInvoiceWithItems creates an invoice and its items atomically.
func (s *Service) CreateInvoiceWithItems(input InvoiceCreateInput) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = s.createInvoiceTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreateInvoiceTx exposes invoice creation for callers that already hold a
// transaction (the monthly invoice run creates many in one pass).
func (s *Service) CreateInvoiceTx(tx *gorm.DB, input InvoiceCreateInput) (*models.Invoice, error) {
	return s.createInvoiceTx(tx, input)
}

func (s *Service) createInvoiceTx(tx *gorm.DB, input InvoiceCreateInput) (*models.Invoice, error) {
	lines, totals, err := ComputeLines(input.Items, input.VatRate)
	if err != nil {
		return nil, err
	}

	number, err := nextInvoiceNumber(tx)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: number,
		CustomerID:    input.CustomerID,
		BookingID:     input.BookingID,
		QuoteID:       input.QuoteID,
		Status:        models.InvoiceDraft,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		Subtotal:      totals.Subtotal,
		VatRate:       input.VatRate,
		VatAmount:     totals.VatAmount,
		Total:         totals.Total,
	}
	if err := tx.Create(invoice).Error; err != nil {
		return nil, err
	}

	for _, line := range lines {
		item := models.InvoiceItem{
			InvoiceID:   invoice.ID,
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}
		invoice.Items = append(invoice.Items, item)
	}
	return invoice, nil
}

// CreateInvoiceFromQuote copies an accepted quote's items into a new invoice
// with fresh numbering and 14-day terms.
func (s *Service) CreateInvoiceFromQuote(quoteID uuid.UUID, now time.Time) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.Preload("Items").First(&quote, "id = ?", quoteID).Error; err != nil {
			return err
		}

		items := make([]LineItemInput, 0, len(quote.Items))
		for _, item := range quote.Items {
			items = append(items, LineItemInput{
				Description: item.Description,
				Qty:         item.Qty,
				UnitPrice:   item.UnitPrice,
			})
		}

		issueDate := now.Truncate(24 * time.Hour)
		var err error
		invoice, err = s.createInvoiceTx(tx, InvoiceCreateInput{
			CustomerID: quote.CustomerID,
			BookingID:  &quote.BookingID,
			QuoteID:    &quote.ID,
			IssueDate:  issueDate,
			DueDate:    issueDate.AddDate(0, 0, 14),
			VatRate:    quote.VatRate,
			Items:      items,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// SetQuoteStatus applies an accept/decline decision. Accepting with
// autoCreateInvoice creates the invoice from the quote in the same
// transaction; the returned invoice is non-nil only in that case.
func (s *Service) SetQuoteStatus(quoteID uuid.UUID, status models.QuoteStatus, autoCreateInvoice bool, now time.Time) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.Preload("Items").First(&quote, "id = ?", quoteID).Error; err != nil {
			return err
		}
		if quote.IsExpired(now) && (status == models.QuoteAccepted || status == models.QuoteDeclined) {
			return ErrQuoteNotActionable
		}
		if !quote.CanTransitionTo(status) {
			return fmt.Errorf("quote %s -> %s: %w", quote.Status, status, models.ErrInvalidTransition)
		}

		quote.Status = status
		if err := tx.Save(&quote).Error; err != nil {
			return err
		}

		if status == models.QuoteAccepted && autoCreateInvoice {
			items := make([]LineItemInput, 0, len(quote.Items))
			for _, item := range quote.Items {
				items = append(items, LineItemInput{
					Description: item.Description,
					Qty:         item.Qty,
					UnitPrice:   item.UnitPrice,
				})
			}

			issueDate := now.Truncate(24 * time.Hour)
			var err error
			invoice, err = s.createInvoiceTx(tx, InvoiceCreateInput{
				CustomerID: quote.CustomerID,
				BookingID:  &quote.BookingID,
				QuoteID:    &quote.ID,
				IssueDate:  issueDate,
				DueDate:    issueDate.AddDate(0, 0, 14),
				VatRate:    quote.VatRate,
				Items:      items,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecordPayment stores a payment and marks the invoice paid once the paid
// total covers it.
func (s *Service) RecordPayment(input PaymentInput, now time.Time) (*models.Payment, error) {
	payment := &models.Payment{
		InvoiceID:     input.InvoiceID,
		Method:        models.PaymentMethod(input.Method),
		Amount:        input.Amount,
		Reference:     input.Reference,
		ProofFilePath: input.ProofFilePath,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Preload("Payments").First(&invoice, "id = ?", input.InvoiceID).Error; err != nil {
			return err
		}
		if invoice.Status != models.InvoiceSent && invoice.Status != models.InvoiceOverdue {
			return ErrInvoiceNotPayable
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		paid := invoice.PaidTotal().Add(payment.Amount)
		if paid.GreaterThanOrEqual(invoice.Total) {
			invoice.Status = models.InvoicePaid
			invoice.PaidAt = &now
			if err := tx.Save(&invoice).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
