package mail

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Message is a rendered notification, ready for SendMail.
type Message struct {
	Subject string
	Body    string
}

const bodyShell = `<html><body style="font-family: sans-serif; color: #222;">
<h2 style="color: #2e7d32;">%s</h2>
%s
<p style="margin-top: 24px;">Kind regards,<br>%s</p>
</body></html>`

func render(businessName, heading, content string) string {
	return fmt.Sprintf(bodyShell, heading, content, businessName)
}

// BookingConfirmed tells the customer their visit is locked in.
func BookingConfirmed(businessName, customerName, serviceName string, when time.Time, address string) Message {
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your <strong>%s</strong> visit is confirmed for <strong>%s</strong> at %s.</p>",
		customerName, serviceName, when.Format("Monday, 02 January 2006 at 15:04"), address,
	)
	return Message{
		Subject: fmt.Sprintf("Booking confirmed: %s on %s", serviceName, when.Format("02 Jan 2006")),
		Body:    render(businessName, "Booking confirmed", content),
	}
}

// QuoteReady tells the customer a quote is waiting for their decision.
func QuoteReady(businessName, customerName, quoteNumber string, total decimal.Decimal, validUntil time.Time) Message {
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>Quote <strong>%s</strong> for <strong>R %s</strong> is ready in your portal. It is valid until %s.</p>",
		customerName, quoteNumber, total.StringFixed(2), validUntil.Format("02 January 2006"),
	)
	return Message{
		Subject: fmt.Sprintf("Your quote %s is ready", quoteNumber),
		Body:    render(businessName, "Your quote is ready", content),
	}
}

// InvoiceIssued delivers an invoice summary with its due date.
func InvoiceIssued(businessName, customerName, invoiceNumber string, total decimal.Decimal, dueDate time.Time) Message {
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>Invoice <strong>%s</strong> for <strong>R %s</strong> has been issued. Payment is due by %s.</p>",
		customerName, invoiceNumber, total.StringFixed(2), dueDate.Format("02 January 2006"),
	)
	return Message{
		Subject: fmt.Sprintf("Invoice %s from %s", invoiceNumber, businessName),
		Body:    render(businessName, "New invoice", content),
	}
}

// PaymentReceived confirms a payment against an invoice.
func PaymentReceived(businessName, customerName, invoiceNumber string, amount decimal.Decimal) Message {
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your payment of <strong>R %s</strong> against invoice <strong>%s</strong>. Thank you.</p>",
		customerName, amount.StringFixed(2), invoiceNumber,
	)
	return Message{
		Subject: fmt.Sprintf("Payment received for invoice %s", invoiceNumber),
		Body:    render(businessName, "Payment received", content),
	}
}

// BookingRequested notifies the office of a new booking awaiting confirmation.
func BookingRequested(businessName, customerName, serviceName string, when time.Time, address string) Message {
	content := fmt.Sprintf(
		"<p>%s requested a <strong>%s</strong> visit for <strong>%s</strong> at %s.</p>",
		customerName, serviceName, when.Format("Monday, 02 January 2006 at 15:04"), address,
	)
	return Message{
		Subject: fmt.Sprintf("New booking request from %s", customerName),
		Body:    render(businessName, "New booking request", content),
	}
}

// PlanRequestReceived notifies the office of a new recurring-plan request.
func PlanRequestReceived(businessName, customerName, title, address string, frequencyPerWeek int) Message {
	content := fmt.Sprintf(
		"<p>%s asked about a recurring plan:</p><p><strong>%s</strong><br>%s<br>%d visit(s) per week</p>",
		customerName, title, address, frequencyPerWeek,
	)
	return Message{
		Subject: fmt.Sprintf("New plan request from %s", customerName),
		Body:    render(businessName, "New monthly plan request", content),
	}
}

// AccountActivation carries the activation link for a fresh registration.
func AccountActivation(businessName, customerName, activationURL string) Message {
	content := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to %s. Please confirm your email address:</p><p><a href=\"%s\">Activate my account</a></p>",
		customerName, businessName, activationURL,
	)
	return Message{
		Subject: fmt.Sprintf("Activate your %s account", businessName),
		Body:    render(businessName, "Welcome", content),
	}
}
