// Package bot is the Telegram front end of the intake system. It turns bot
// updates into calls on the application services: registration and referral
// redemption on /start, the case questionnaire, the partner profile, revenue
// entry, the referral program screen and the support thread with staff.
//
// Updates are processed by a Dispatcher that serializes work per user. Form
// progress is kept in a session.Store between updates.
package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Deps groups the collaborators of the bot.
type Deps struct {
	API      API
	Sessions session.Store
	Notifier notify.Notifier
	Files    Fetcher

	Users     *services.UserService
	Referrals *services.ReferralService
	Profiles  *services.ProfileService
	Revenue   *services.RevenueService
	Cases     *services.QuestionnaireService
	Messages  *services.MessagingService
}

// Options are the tunables of the bot.
type Options struct {
	// AdminChatID receives new-user notices.
	AdminChatID int64
	// PartnersChatID receives case cards and documents; falls back to
	// AdminChatID when zero.
	PartnersChatID int64
	UploadDir      string
	Policy         forms.AttachmentPolicy
	ThrottleRPS    float64
	ThrottleBurst  int
	Workers        int
}

// Bot handles Telegram updates.
type Bot struct {
	Deps
	opts     Options
	throttle *Throttle

	// now defaults to time.Now.
	now func() time.Time
}

// New returns a bot over d.
func New(d Deps, opts Options) *Bot {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	return &Bot{
		Deps:     d,
		opts:     opts,
		throttle: NewThrottle(opts.ThrottleRPS, opts.ThrottleBurst),
		now:      time.Now,
	}
}

// Run dispatches updates until ctx is canceled or updates is closed.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	d := Dispatcher{Workers: b.opts.Workers}
	d.Run(ctx, updates, b.Handle)
}

// Handle processes one update. It never panics and never returns an error:
// failures are logged, counted, and reported to the user as a generic error.
func (b *Bot) Handle(ctx context.Context, upd tgbotapi.Update) {
	start := time.Now()
	kind := updateKind(upd)
	uid := SenderID(upd)
	outcome := "ok"
	lg := log.With().
		Int("update_id", upd.UpdateID).
		Int64("telegram_id", uid).
		Str("kind", kind).
		Logger()

	defer func() {
		if rec := recover(); rec != nil {
			outcome = "panic"
			lg.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("bot handler panic")
		}
		observeUpdate(kind, outcome, time.Since(start))
		lg.Info().
			Str("outcome", outcome).
			Dur("latency", time.Since(start)).
			Msg("update")
	}()

	if uid == 0 || kind == kindOther {
		outcome = "ignored"
		return
	}
	if !b.throttle.Allow(uid) {
		outcome = "throttled"
		b.throttled(upd)
		return
	}

	ctx = lg.WithContext(ctx)
	var err error
	switch kind {
	case kindCallback:
		err = b.onCallback(ctx, upd.CallbackQuery)
	default:
		err = b.onMessage(ctx, upd.Message)
	}
	if err == nil {
		return
	}

	outcome = "error"
	if notify.Unreachable(err) {
		outcome = "blocked"
		if merr := b.Users.MarkBlocked(ctx, uid); merr != nil {
			lg.Warn().Err(merr).Msg("mark blocked")
		}
		return
	}
	lg.Error().Err(err).Msg("update failed")
	if chatID := chatOf(upd); chatID != 0 {
		_ = b.send(chatID, textError, nil)
	}
}

func (b *Bot) throttled(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		cb := tgbotapi.NewCallbackWithAlert(upd.CallbackQuery.ID, textThrottledShort)
		_, _ = b.API.Request(cb)
		return
	}
	if chatID := chatOf(upd); chatID != 0 {
		_ = b.send(chatID, textThrottled, nil)
	}
}

// send delivers an HTML message with an optional keyboard.
func (b *Bot) send(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.API.Send(msg)
	return err
}

// edit replaces the text and inline keyboard of a bot message. Callbacks
// on messages that can no longer be edited fall back to a new message.
func (b *Bot) edit(cq *tgbotapi.CallbackQuery, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var rm interface{}
	if markup != nil {
		rm = *markup
	}
	if cq.Message == nil {
		return b.send(cq.From.ID, text, rm)
	}
	var cfg tgbotapi.EditMessageTextConfig
	if markup != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, *markup)
	} else {
		cfg = tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	}
	cfg.ParseMode = tgbotapi.ModeHTML
	cfg.DisableWebPagePreview = true
	if _, err := b.API.Send(cfg); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			return b.send(cq.Message.Chat.ID, text, rm)
		}
		return err
	}
	return nil
}

// answer acknowledges a callback query; text may be empty.
func (b *Bot) answer(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := b.API.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		log.Debug().Err(err).Str("callback", cq.Data).Msg("answer callback")
	}
}

// session returns the active form of a user, or nil.
func (b *Bot) session(ctx context.Context, uid int64) (*session.Session, error) {
	s, err := b.Sessions.Get(ctx, uid)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (b *Bot) saveSession(ctx context.Context, uid int64, s *session.Session) error {
	s.UpdatedAt = b.now().UTC()
	if err := b.Sessions.Put(ctx, uid, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *Bot) dropSession(ctx context.Context, uid int64) {
	if err := b.Sessions.Delete(ctx, uid); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("drop session")
	}
}

func (b *Bot) partnersChat() int64 {
	if b.opts.PartnersChatID != 0 {
		return b.opts.PartnersChatID
	}
	return b.opts.AdminChatID
}

func telegramUser(u *tgbotapi.User) services.TelegramUser {
	return services.TelegramUser{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// Update kinds used as the metrics and log label.
const (
	kindCommand  = "command"
	kindText     = "text"
	kindDocument = "document"
	kindPhoto    = "photo"
	kindCallback = "callback"
	kindMessage  = "message"
	kindOther    = "other"
)

func updateKind(upd tgbotapi.Update) string {
	switch {
	case upd.CallbackQuery != nil:
		return kindCallback
	case upd.Message == nil:
		return kindOther
	case upd.Message.IsCommand():
		return kindCommand
	case upd.Message.Document != nil:
		return kindDocument
	case len(upd.Message.Photo) > 0:
		return kindPhoto
	case upd.Message.Text != "":
		return kindText
	default:
		return kindMessage
	}
}

// SenderID returns the Telegram id of the user behind an update, or 0.
func SenderID(upd tgbotapi.Update) int64 {
	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID
	case upd.Message != nil && upd.Message.From != nil:
		return upd.Message.From.ID
	default:
		return 0
	}
}

func chatOf(upd tgbotapi.Update) int64 {
	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return upd.CallbackQuery.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID
	case upd.Message != nil && upd.Message.Chat != nil:
		return upd.Message.Chat.ID
	default:
		return 0
	}
}
