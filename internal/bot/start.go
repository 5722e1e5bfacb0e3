package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/services"
)

// start registers the user (or refreshes their display fields), tells the
// admin chat about newcomers, redeems a referral code passed as the start
// argument and shows the main menu. Any form in progress is discarded.
func (b *Bot) start(ctx context.Context, m *tgbotapi.Message) error {
	u, created, err := b.Users.Touch(ctx, telegramUser(m.From))
	if err != nil {
		return err
	}
	b.dropSession(ctx, u.TelegramID)

	if created {
		notify.Deliver(ctx, b.Notifier, b.opts.AdminChatID, newUserNotice(u))
	}
	if code := strings.TrimSpace(m.CommandArguments()); code != "" {
		b.redeem(ctx, code, u.TelegramID)
	}
	return b.send(m.Chat.ID, textWelcome, mainMenuKeyboard())
}

// redeem links the user to the owner of code. Invalid, own and repeated
// codes are ignored silently.
func (b *Bot) redeem(ctx context.Context, code string, telegramID int64) {
	lg := zerolog.Ctx(ctx)
	_, err := b.Referrals.Redeem(ctx, code, telegramID)
	switch {
	case err == nil:
		lg.Info().Str("code", code).Msg("referral redeemed")
	case errors.Is(err, services.ErrUnknownReferralCode),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrAlreadyReferred):
		lg.Info().Err(err).Str("code", code).Msg("referral ignored")
	default:
		lg.Error().Err(err).Str("code", code).Msg("referral redeem failed")
	}
}

func newUserNotice(u *domain.User) string {
	username := "not set"
	if u.Username != "" {
		username = "@" + u.Username
	}
	orNone := func(s string) string {
		if s == "" {
			return "not set"
		}
		return s
	}
	return fmt.Sprintf(
		"👤 <b>New user</b>\nID: <code>%d</code>\nFirst name: %s\nLast name: %s\nUsername: %s",
		u.TelegramID,
		html.EscapeString(orNone(u.FirstName)),
		html.EscapeString(orNone(u.LastName)),
		html.EscapeString(username),
	)
}
