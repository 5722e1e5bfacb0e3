package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

// money renders a whole amount with thousands separators.
func money(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func (b *Bot) startRevenue(ctx context.Context, chatID, uid int64) error {
	f := forms.NewRevenueForm()
	if err := b.saveSession(ctx, uid, &session.Session{Kind: session.KindRevenue, Revenue: f}); err != nil {
		return err
	}
	return b.send(chatID, "💰 <b>Add revenue</b>\n\n"+html.EscapeString(f.Prompt()), cancelKeyboard())
}

func (b *Bot) revenueInput(ctx context.Context, m *tgbotapi.Message, s *session.Session) error {
	f := s.Revenue
	chatID, uid := m.Chat.ID, m.From.ID
	if f == nil {
		b.dropSession(ctx, uid)
		return b.send(chatID, textStale, mainMenuKeyboard())
	}

	if err := f.Answer(m.Text); err != nil {
		if formError(err) {
			return b.send(chatID, "❌ "+capitalize(err.Error())+".\n\n"+html.EscapeString(f.Prompt()), cancelKeyboard())
		}
		return err
	}
	if !f.Done() {
		if err := b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		return b.send(chatID, html.EscapeString(f.Prompt()), cancelKeyboard())
	}

	r, err := b.Revenue.Record(ctx, services.RevenueInput{
		TelegramID:  uid,
		Amount:      f.Amount,
		Description: f.Description,
	})
	b.dropSession(ctx, uid)
	if errors.Is(err, services.ErrUserNotFound) {
		return b.send(chatID, textUnknownUser, mainMenuKeyboard())
	}
	if err != nil {
		return err
	}
	return b.send(chatID, fmt.Sprintf(textRevenueSaved, money(r.Amount)), mainMenuKeyboard())
}
