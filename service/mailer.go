package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/kevinaaaquil/onestopbooks/models"
)

// Notifier tells a customer their order went through.
type Notifier interface {
	OrderConfirmed(ctx context.Context, customer *models.Customer, receipt *Receipt) error
}

// Mailer sends order confirmations over SMTP.
type Mailer struct {
	dialer *mail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.Timeout = 10 * time.Second
	return &Mailer{dialer: d, from: from}
}

func (m *Mailer) OrderConfirmed(ctx context.Context, customer *models.Customer, receipt *Receipt) error {
	if customer == nil || customer.Email == "" {
		return nil
	}
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", customer.Email, customer.String())
	msg.SetHeader("Subject", "Your OneStopBooks order "+receipt.TransactionID)
	msg.SetBody("text/plain", ConfirmationBody(customer, receipt))
	sent := make(chan error, 1)
	go func() { sent <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-sent:
		if err != nil {
			return fmt.Errorf("send confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send confirmation: %w", ctx.Err())
	}
}

// ConfirmationBody renders the plain text confirmation for a completed order.
func ConfirmationBody(customer *models.Customer, receipt *Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", customer.FirstName)
	fmt.Fprintf(&b, "Thanks for shopping at OneStopBooks. Transaction: %s\n\n", receipt.TransactionID)
	for _, l := range receipt.Cart.Lines {
		fmt.Fprintf(&b, "  %d x %s  $%d\n", l.Item.Quantity, l.Book.Title, l.Total())
	}
	for _, r := range receipt.Cart.Rentals {
		fmt.Fprintf(&b, "  %d x %s  (rental)\n", r.Item.Quantity, r.Book.Title)
	}
	fmt.Fprintf(&b, "\nTotal: $%d\n", receipt.Cart.Total())
	fmt.Fprintf(&b, "\nShipping to:\n  %s\n  %s\n", customer.String(), customer.Address1)
	if customer.Address2 != "" {
		fmt.Fprintf(&b, "  %s\n", customer.Address2)
	}
	fmt.Fprintf(&b, "  %s, %s %s\n", customer.City, customer.State, customer.ZipCode)
	return b.String()
}

// NopNotifier drops notifications; used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) OrderConfirmed(context.Context, *models.Customer, *Receipt) error { return nil }
