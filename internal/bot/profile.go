package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

func (b *Bot) startProfile(ctx context.Context, chatID, uid int64) error {
	f := forms.NewProfileForm()
	if err := b.saveSession(ctx, uid, &session.Session{Kind: session.KindProfile, Profile: f}); err != nil {
		return err
	}
	return b.send(chatID, "📝 <b>Partner details</b>\n\n"+f.Prompt(), cancelKeyboard())
}

// formError reports whether err is a validation error to show the user.
func formError(err error) bool {
	for _, target := range []error{
		forms.ErrEmptyAnswer,
		forms.ErrInvalidPhone,
		forms.ErrInvalidEmail,
		forms.ErrInvalidExperience,
		forms.ErrInvalidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (b *Bot) profileInput(ctx context.Context, m *tgbotapi.Message, s *session.Session) error {
	f := s.Profile
	chatID, uid := m.Chat.ID, m.From.ID
	if f == nil {
		b.dropSession(ctx, uid)
		return b.send(chatID, textStale, mainMenuKeyboard())
	}

	if err := f.Answer(m.Text); err != nil {
		if formError(err) {
			return b.send(chatID, "❌ "+capitalize(err.Error())+".\n\n"+f.Prompt(), cancelKeyboard())
		}
		return err
	}
	if !f.Done() {
		if err := b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		return b.send(chatID, f.Prompt(), cancelKeyboard())
	}

	p, _, err := b.Profiles.Save(ctx, uid, f)
	b.dropSession(ctx, uid)
	if errors.Is(err, services.ErrUserNotFound) {
		return b.send(chatID, textUnknownUser, mainMenuKeyboard())
	}
	if err != nil {
		return err
	}
	if err := b.send(chatID, textProfileSaved, mainMenuKeyboard()); err != nil {
		return err
	}
	return b.send(chatID, profileText(p), profileViewKeyboard(p.ConsentToShareData))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func profileText(p *domain.PartnerProfile) string {
	consent := "no"
	if p.ConsentToShareData {
		consent = "yes"
	}
	return fmt.Sprintf(
		"👤 <b>Your profile</b>\n\n"+
			"Full name: %s\nCompany: %s\nPhone: %s\nE-mail: %s\nSpecialization: %s\nExperience: %d years\n"+
			"Consent to share data: %s",
		html.EscapeString(p.FullName),
		html.EscapeString(p.CompanyName),
		html.EscapeString(p.Phone),
		html.EscapeString(p.Email),
		html.EscapeString(p.Specialization),
		p.Experience,
		consent,
	)
}

func (b *Bot) showProfile(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	p, err := b.Profiles.Get(ctx, cq.From.ID)
	if errors.Is(err, services.ErrProfileNotFound) || errors.Is(err, services.ErrUserNotFound) {
		kb := column(
			button("📝 Fill in my details", cbProfileUpdate),
			button("🔙 Back", cbProfileMenu),
		)
		return b.edit(cq, textProfileMissing, &kb)
	}
	if err != nil {
		return err
	}
	kb := profileViewKeyboard(p.ConsentToShareData)
	return b.edit(cq, profileText(p), &kb)
}

func (b *Bot) toggleConsent(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	p, err := b.Profiles.Get(ctx, cq.From.ID)
	if errors.Is(err, services.ErrProfileNotFound) || errors.Is(err, services.ErrUserNotFound) {
		return b.showProfile(ctx, cq)
	}
	if err != nil {
		return err
	}
	if err := b.Profiles.SetConsent(ctx, cq.From.ID, !p.ConsentToShareData); err != nil {
		return err
	}
	return b.showProfile(ctx, cq)
}
