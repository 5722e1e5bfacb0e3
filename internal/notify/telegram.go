package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers notifications as bot messages.
type Telegram struct {
	Bot       Sender
	ParseMode string
}

// NewTelegram returns a notifier that sends HTML-formatted messages via bot.
func NewTelegram(bot Sender) *Telegram {
	return &Telegram{Bot: bot, ParseMode: tgbotapi.ModeHTML}
}

// Notify implements Notifier. A 403 from Telegram, or a "chat not found"
// 400, is reported as ErrBlocked.
func (t *Telegram) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = t.ParseMode
	_, err := t.Bot.Send(msg)
	err = classify(err)
	observe("telegram", err)
	return err
}

// Unreachable reports whether err from a Telegram send means the user can no
// longer be reached.
func Unreachable(err error) bool {
	return errors.Is(classify(err), ErrBlocked)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 || (apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "chat not found")) {
			return fmt.Errorf("%w: %s", ErrBlocked, apiErr.Message)
		}
	}
	return err
}
