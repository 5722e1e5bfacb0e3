package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ReminderProfile is the NotificationLog kind of the "fill in your profile"
// reminder.
const ReminderProfile = "profile_reminder"

// Reminder defaults.
const (
	DefaultReminderDelay       = 24 * time.Hour
	DefaultReminderInterval    = 72 * time.Hour
	DefaultReminderMaxAttempts = 3
)

// ReminderText is sent to users who have not filled in a partner profile.
const ReminderText = "👋 You have not completed your partner profile yet.\n\n" +
	"Fill it in from the main menu (👤 Partner profile) to submit cases, " +
	"report revenue and join the referral program."

// SweepResult reports one reminder pass.
type SweepResult struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ReminderService nudges users who registered but never created a partner
// profile. Each user gets at most MaxAttempts delivered reminders spaced at
// least Interval apart, starting Delay after registration. A failed send is
// logged and retried on the next sweep.
type ReminderService struct {
	DB          *gorm.DB
	Notifier    notify.Notifier
	Delay       time.Duration
	Interval    time.Duration
	MaxAttempts int

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *ReminderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Sweep runs one pass over eligible users.
func (s *ReminderService) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := otel.Tracer("services/ReminderService").Start(ctx, "Sweep")
	defer span.End()

	delay, interval, maxAttempts := s.Delay, s.Interval, s.MaxAttempts
	if delay <= 0 {
		delay = DefaultReminderDelay
	}
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultReminderMaxAttempts
	}

	now := s.now()
	users, err := repo.ListUsersWithoutProfile(ctx, s.DB, now.Add(-delay))
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		attempts, last, err := repo.ReminderState(ctx, s.DB, u.ID, ReminderProfile)
		if err != nil {
			return res, err
		}
		if attempts >= maxAttempts || (last != nil && now.Sub(*last) < interval) {
			res.Skipped++
			continue
		}

		err = s.send(ctx, u)
		entry := &domain.NotificationLog{
			UserID:    u.ID,
			Kind:      ReminderProfile,
			Attempt:   attempts + 1,
			Delivered: err == nil,
			SentAt:    now,
		}
		if lerr := repo.CreateNotificationLog(ctx, s.DB, entry); lerr != nil {
			return res, lerr
		}
		if err != nil {
			res.Failed++
			log.Warn().Err(err).Int64("telegram_id", u.TelegramID).Int("attempt", entry.Attempt).Msg("reminder not delivered")
			if errors.Is(err, notify.ErrBlocked) {
				_ = repo.SetUserActive(ctx, s.DB, u.ID, false)
			}
			continue
		}
		res.Sent++
	}
	span.SetAttributes(
		attribute.Int("reminders.checked", res.Checked),
		attribute.Int("reminders.sent", res.Sent),
		attribute.Int("reminders.failed", res.Failed),
	)
	return res, nil
}

func (s *ReminderService) send(ctx context.Context, u domain.User) error {
	if s.Notifier == nil {
		return errors.New("no notifier configured")
	}
	return s.Notifier.Notify(ctx, u.TelegramID, ReminderText)
}
