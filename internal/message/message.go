// internal/message/message.go
//
// Outbound customer messages.
//
// Context
//   Checkout sends an order-confirmation e-mail after the 303 redirect has
//   been issued.  The send runs on the request's background executor, so a
//   slow mail relay never delays the customer.  Sender is the seam: the
//   LogSender used in development writes the payload to the log, while a
//   relay-backed sender plugs in without touching callers.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/i18n"
)

// Email represents one outbound e-mail.
type Email struct {
	To      []string
	Subject string
	Text    string
}

// Sender delivers e-mails.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// LogSender logs the payload and never fails.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, msg Email) error {
	zap.L().Info("email queued",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("len", len(msg.Text)))
	return nil
}

// OrderConfirmation builds the confirmation e-mail in the order's locale.
func OrderConfirmation(o *commerce.Order) Email {
	return Email{
		To:      []string{o.Email},
		Subject: fmt.Sprintf("%s #%s", i18n.T(o.Locale, "order.confirmed"), o.ID[:8]),
		Text: fmt.Sprintf("%s\n\n%d × %s\n%s: %s\n",
			i18n.T(o.Locale, "order.thanks"),
			o.Quantity, o.Title,
			i18n.T(o.Locale, "order.total"), o.Total),
	}
}
