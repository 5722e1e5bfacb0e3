package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/lawdesk/internal/session"
)

// onMessage routes a message. Commands come first, then the active form (if
// any), then main-menu labels, and finally free text, which is relayed to
// staff as a support message. While a form is active only the cancel button
// is recognized as a label; everything else is an answer.
func (b *Bot) onMessage(ctx context.Context, m *tgbotapi.Message) error {
	uid := m.From.ID
	chatID := m.Chat.ID

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			return b.start(ctx, m)
		case "cancel":
			return b.cancel(ctx, chatID, uid)
		case "menu", "help":
			return b.send(chatID, textMainMenu, mainMenuKeyboard())
		}
	}

	s, err := b.session(ctx, uid)
	if err != nil {
		return err
	}
	if s != nil {
		if isLabel(m.Text, LabelCancel) {
			return b.cancel(ctx, chatID, uid)
		}
		switch s.Kind {
		case session.KindQuestionnaire:
			return b.caseInput(ctx, m, s)
		case session.KindProfile:
			return b.profileInput(ctx, m, s)
		case session.KindRevenue:
			return b.revenueInput(ctx, m, s)
		}
		// Unknown kind: drop it and treat the message as fresh.
		b.dropSession(ctx, uid)
	}

	if label, ok := menuLabel(m.Text); ok {
		return b.menu(ctx, m, label)
	}
	if m.Document != nil || len(m.Photo) > 0 {
		return b.send(chatID, textAttachOutside, mainMenuKeyboard())
	}
	if strings.TrimSpace(m.Text) == "" {
		return nil
	}
	return b.relay(ctx, m)
}

func (b *Bot) menu(ctx context.Context, m *tgbotapi.Message, label string) error {
	chatID, uid := m.Chat.ID, m.From.ID
	switch label {
	case LabelServices:
		return b.showServices(ctx, chatID)
	case LabelHistory:
		return b.showHistory(ctx, chatID, uid)
	case LabelProfile:
		return b.send(chatID, textProfileMenu, profileMenuKeyboard())
	case LabelSendCase:
		return b.startCase(ctx, chatID, uid)
	case LabelSupport:
		return b.showSupport(ctx, chatID, uid)
	case LabelFAQ:
		return b.showFAQ(ctx, chatID)
	case LabelReferral:
		return b.showReferral(ctx, chatID, m.From, nil)
	case LabelRevenue:
		return b.startRevenue(ctx, chatID, uid)
	}
	return nil
}

// onCallback routes an inline button press. Every query is answered so the
// client stops its progress indicator.
func (b *Bot) onCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	data := cq.Data
	chatID := cq.From.ID
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
	}

	switch {
	case data == cbCaseEdit, data == cbCaseSummary, data == cbCaseSubmit, data == cbCaseCancel,
		strings.HasPrefix(data, cbCaseEditKey):
		return b.onCaseCallback(ctx, cq)
	}

	b.answer(cq, "")
	switch {
	case data == cbMainMenu:
		return b.send(chatID, textMainMenu, mainMenuKeyboard())
	case data == cbProfileMenu:
		kb := profileMenuKeyboard()
		return b.edit(cq, textProfileMenu, &kb)
	case data == cbProfileUpdate:
		return b.startProfile(ctx, chatID, cq.From.ID)
	case data == cbProfileView:
		return b.showProfile(ctx, cq)
	case data == cbConsent:
		return b.toggleConsent(ctx, cq)
	case data == cbReferral:
		return b.showReferral(ctx, chatID, cq.From, cq)
	case data == cbReferralQR:
		return b.sendReferralQR(ctx, chatID, cq.From)
	case data == cbPayouts:
		return b.showPayouts(ctx, cq)
	case data == cbRevenue:
		return b.startRevenue(ctx, chatID, cq.From.ID)
	case data == cbServices, strings.HasPrefix(data, cbServiceKey):
		return b.onServiceCallback(cq)
	case data == cbFAQ, strings.HasPrefix(data, cbFAQKey):
		return b.onFAQCallback(cq)
	}
	return nil
}

// cancel drops the active form, if any, and shows the main menu.
func (b *Bot) cancel(ctx context.Context, chatID, uid int64) error {
	s, err := b.session(ctx, uid)
	if err != nil {
		return err
	}
	b.dropSession(ctx, uid)
	text := textCancelled
	if s != nil && s.Kind == session.KindQuestionnaire {
		text = textCaseCancelled
	}
	return b.send(chatID, text, mainMenuKeyboard())
}
