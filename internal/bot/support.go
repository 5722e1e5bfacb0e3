package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/services"
)

const (
	historyLimit = 20
	threadLimit  = 5
	previewRunes = 200
)

func statusLabel(status string) string {
	if l, ok := services.StatusLabels[status]; ok {
		return l
	}
	return status
}

func casesText(cases []domain.CaseQuestionnaire) string {
	var sb strings.Builder
	for _, c := range cases {
		fmt.Fprintf(&sb, "#%d from %s: %s\n", c.ID, c.CreatedAt.Format("02.01.2006"), statusLabel(c.Status))
	}
	return sb.String()
}

// showHistory lists the user's submitted cases, newest first.
func (b *Bot) showHistory(ctx context.Context, chatID, uid int64) error {
	cases, err := b.Cases.ForUser(ctx, uid, historyLimit)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}
	if len(cases) == 0 {
		return b.send(chatID, textNoCases, mainMenuKeyboard())
	}
	return b.send(chatID, "📚 <b>Your cases</b>\n\n"+casesText(cases), mainMenuKeyboard())
}

// showSupport shows the user's cases with their statuses and the tail of
// their conversation with staff, then invites them to write.
func (b *Bot) showSupport(ctx context.Context, chatID, uid int64) error {
	cases, err := b.Cases.ForUser(ctx, uid, historyLimit)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}
	thread, err := b.Messages.UserThread(ctx, uid, threadLimit)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return err
	}

	var sb strings.Builder
	sb.WriteString("💬 <b>Support</b>\n\n")
	if len(cases) > 0 {
		sb.WriteString("<b>Your cases:</b>\n")
		sb.WriteString(casesText(cases))
		sb.WriteByte('\n')
	}
	if len(thread) > 0 {
		sb.WriteString("<b>Recent messages:</b>\n")
		for _, m := range thread {
			who := "You"
			if m.SenderKind == domain.SenderAdmin {
				who = "Team"
			}
			fmt.Fprintf(&sb, "%s %s: %s\n",
				m.CreatedAt.Format("02.01 15:04"), who, html.EscapeString(truncate(m.Content, previewRunes)))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(textSupportPrompt)
	return b.send(chatID, sb.String(), mainMenuKeyboard())
}

// relay forwards free text to staff as a support message.
func (b *Bot) relay(ctx context.Context, m *tgbotapi.Message) error {
	_, err := b.Messages.PostClientMessage(ctx, services.ClientMessage{
		TelegramID: m.From.ID,
		Username:   m.From.UserName,
		FirstName:  m.From.FirstName,
		LastName:   m.From.LastName,
		Text:       m.Text,
	})
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		return nil
	case errors.Is(err, services.ErrMessageTooLong):
		max := b.Messages.MaxRunes
		if max <= 0 {
			max = services.DefaultMaxMessageRunes
		}
		return b.send(m.Chat.ID, fmt.Sprintf(textSupportTooLong, max), nil)
	case err != nil:
		return err
	}
	return b.send(m.Chat.ID, textSupportSent, nil)
}
