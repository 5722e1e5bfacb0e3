// Package notify delivers short text notifications to chat users and staff.
//
// The Notifier capability is deliberately narrow: one text to one chat id,
// success or failure. Callers that only need a delivery flag use Deliver.
// Implementations record notifications_total{channel,outcome}.
package notify

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// ErrBlocked is returned when the recipient has blocked the bot or the chat
// no longer exists.
var ErrBlocked = errors.New("recipient unreachable")

// Notifier sends text to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, chatID int64, text string) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, chatID int64, text string) error { return f(ctx, chatID, text) }

// Nop drops every notification and reports success.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, int64, string) error { return nil }

var notifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Outbound notifications by channel and outcome.",
	},
	[]string{"channel", "outcome"},
)

func init() {
	prometheus.MustRegister(notifications)
}

func observe(channel string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrBlocked):
		outcome = "blocked"
	case err != nil:
		outcome = "error"
	}
	notifications.WithLabelValues(channel, outcome).Inc()
}

// Deliver sends text through n and reports success as a boolean. Failures are
// logged and never returned. A nil Notifier delivers nothing.
func Deliver(ctx context.Context, n Notifier, chatID int64, text string) bool {
	if n == nil || chatID == 0 {
		return false
	}
	if err := n.Notify(ctx, chatID, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("notification not delivered")
		return false
	}
	return true
}
