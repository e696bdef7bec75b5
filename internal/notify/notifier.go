// Package notify delivers best-effort SMS notifications for marketplace
// events. Delivery is strictly post-commit and advisory: a failed or slow
// send never rolls back or delays the transaction that triggered it.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier sends a single SMS message to a phone number in E.164 form.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// NoopNotifier drops messages, logging them at debug level. Used when no SMS
// provider is configured so the rest of the pipeline stays exercised.
type NoopNotifier struct{}

// Send logs and discards the message.
func (NoopNotifier) Send(_ context.Context, to, body string) error {
	log.Debug().Str("to", to).Int("body_len", len(body)).Msg("notify: noop send")
	return nil
}
