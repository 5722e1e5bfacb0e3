// Package services – MessagingService
//
// MessagingService is the relay between bot users and staff. Every user has
// one thread; each message is filed under the user's most recent
// questionnaire or, before the first one, under the general bucket
// (QuestionnaireID nil). Client messages are mirrored to the staff chat and
// staff messages are delivered to the client; delivery is best effort and
// never rolls back the stored message.
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxMessageRunes bounds message content when MaxRunes is unset.
const DefaultMaxMessageRunes = 4000

// ClientMessage is a message written by a bot user.
type ClientMessage struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Text       string
}

// StaffMessage is a reply written in the back office. The recipient is
// identified by TelegramID or, when zero, by the owner of CaseID.
type StaffMessage struct {
	TelegramID int64
	CaseID     uint
	StaffID    string
	Text       string
}

// BroadcastResult reports the outcome of a broadcast.
type BroadcastResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// MessagingService relays messages between users and staff.
type MessagingService struct {
	DB          *gorm.DB
	Notifier    notify.Notifier
	StaffChatID int64
	MaxRunes    int
}

func (s *MessagingService) tracer() trace.Tracer { return otel.Tracer("services/MessagingService") }

func (s *MessagingService) validate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	max := s.MaxRunes
	if max <= 0 {
		max = DefaultMaxMessageRunes
	}
	if utf8.RuneCountInString(text) > max {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// caseBucket returns the id of the user's newest questionnaire, or nil.
func caseBucket(ctx context.Context, tx *gorm.DB, userID uint) (*uint, error) {
	q, err := repo.LatestQuestionnaireForUser(ctx, tx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := q.ID
	return &id, nil
}

// PostClientMessage stores a message from a bot user and mirrors it to the
// staff chat. Unknown senders get a placeholder user.
func (s *MessagingService) PostClientMessage(ctx context.Context, in ClientMessage) (*domain.CaseMessage, error) {
	ctx, span := s.tracer().Start(ctx, "PostClientMessage",
		trace.WithAttributes(attribute.Int64("telegram.id", in.TelegramID)))
	defer span.End()

	text, err := s.validate(in.Text)
	if err != nil {
		return nil, err
	}

	var (
		msg  *domain.CaseMessage
		user *domain.User
	)
	store := func(tx *gorm.DB) error {
		u, err := ensureUser(ctx, tx, in.TelegramID)
		if err != nil {
			return err
		}
		user = u
		bucket, err := caseBucket(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		msg = &domain.CaseMessage{
			UserID:          u.ID,
			QuestionnaireID: bucket,
			SenderID:        strconv.FormatInt(in.TelegramID, 10),
			SenderKind:      domain.SenderClient,
			Content:         text,
		}
		return repo.CreateMessage(ctx, tx, msg)
	}
	err = s.DB.WithContext(ctx).Transaction(store)
	if repo.IsDuplicate(err) {
		// A concurrent first contact created the user; the retry finds it.
		err = s.DB.WithContext(ctx).Transaction(store)
	}
	if err != nil {
		return nil, err
	}

	name := user.DisplayName()
	if in.FirstName != "" || in.Username != "" {
		name = domain.User{FirstName: in.FirstName, LastName: in.LastName, Username: in.Username}.DisplayName()
	}
	caseRef := "general"
	if msg.QuestionnaireID != nil {
		caseRef = fmt.Sprintf("case #%d", *msg.QuestionnaireID)
	}
	notify.Deliver(ctx, s.Notifier, s.StaffChatID, fmt.Sprintf(
		"💬 <b>Message from %s</b> (id <code>%d</code>, %s)\n\n%s",
		html.EscapeString(name), in.TelegramID, caseRef, html.EscapeString(text),
	))
	return msg, nil
}

// PostStaffMessage stores a staff reply and tries to deliver it. delivered
// reports whether the client received it; a failed delivery keeps the
// stored message.
func (s *MessagingService) PostStaffMessage(ctx context.Context, in StaffMessage) (msg *domain.CaseMessage, delivered bool, err error) {
	ctx, span := s.tracer().Start(ctx, "PostStaffMessage",
		trace.WithAttributes(
			attribute.Int64("telegram.id", in.TelegramID),
			attribute.Int64("case.id", int64(in.CaseID)),
		))
	defer span.End()

	text, err := s.validate(in.Text)
	if err != nil {
		return nil, false, err
	}
	if in.TelegramID == 0 && in.CaseID == 0 {
		return nil, false, ErrNoTarget
	}
	staffID := strings.TrimSpace(in.StaffID)
	if staffID == "" {
		staffID = "admin"
	}

	var user *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bucket *uint
		if in.CaseID != 0 {
			q, err := repo.GetQuestionnaire(ctx, tx, in.CaseID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCaseNotFound
			}
			if err != nil {
				return err
			}
			if user, err = repo.GetUser(ctx, tx, q.UserID); err != nil {
				return err
			}
			if in.TelegramID != 0 && user.TelegramID != in.TelegramID {
				return ErrCaseNotFound
			}
			id := q.ID
			bucket = &id
		} else {
			u, err := repo.GetUserByTelegramID(ctx, tx, in.TelegramID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			if err != nil {
				return err
			}
			user = u
			if bucket, err = caseBucket(ctx, tx, u.ID); err != nil {
				return err
			}
		}
		msg = &domain.CaseMessage{
			UserID:          user.ID,
			QuestionnaireID: bucket,
			SenderID:        staffID,
			SenderKind:      domain.SenderAdmin,
			Content:         text,
			IsRead:          true,
		}
		return repo.CreateMessage(ctx, tx, msg)
	})
	if err != nil {
		return nil, false, err
	}

	delivered = s.deliver(ctx, user, "💬 <b>Message from support</b>\n\n"+html.EscapeString(text))
	span.SetAttributes(attribute.Bool("delivered", delivered))
	return msg, delivered, nil
}

// deliver sends text to u and deactivates users that blocked the bot.
func (s *MessagingService) deliver(ctx context.Context, u *domain.User, text string) bool {
	if s.Notifier == nil {
		return false
	}
	err := s.Notifier.Notify(ctx, u.TelegramID, text)
	if err == nil {
		return true
	}
	if errors.Is(err, notify.ErrBlocked) && u.ID != 0 {
		_ = repo.SetUserActive(ctx, s.DB, u.ID, false)
	}
	return false
}

// Thread returns a page of a user's whole thread, oldest first, and marks
// the user's unread messages as read.
func (s *MessagingService) Thread(ctx context.Context, telegramID int64, page, pageSize int) ([]domain.CaseMessage, int64, error) {
	ctx, span := s.tracer().Start(ctx, "Thread",
		trace.WithAttributes(
			attribute.Int64("telegram.id", telegramID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		))
	defer span.End()

	var (
		items []domain.CaseMessage
		total int64
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUserByTelegramID(ctx, tx, telegramID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if total, err = repo.CountThread(ctx, tx, u.ID); err != nil {
			return err
		}
		offset, limit := pageWindow(page, pageSize)
		if items, err = repo.ListThreadPage(ctx, tx, u.ID, offset, limit); err != nil {
			return err
		}
		_, err = repo.MarkThreadRead(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CaseThread returns the messages filed under one questionnaire and marks
// its unread client messages as read.
func (s *MessagingService) CaseThread(ctx context.Context, caseID uint) ([]domain.CaseMessage, error) {
	ctx, span := s.tracer().Start(ctx, "CaseThread",
		trace.WithAttributes(attribute.Int64("case.id", int64(caseID))))
	defer span.End()

	var items []domain.CaseMessage
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetQuestionnaire(ctx, tx, caseID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCaseNotFound
			}
			return err
		}
		var err error
		if items, err = repo.ListCaseMessages(ctx, tx, caseID); err != nil {
			return err
		}
		_, err = repo.MarkCaseRead(ctx, tx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Dialogs returns one summary row per user with messages, newest first.
func (s *MessagingService) Dialogs(ctx context.Context) ([]repo.DialogRow, error) {
	ctx, span := s.tracer().Start(ctx, "Dialogs")
	defer span.End()
	return repo.ListDialogs(ctx, s.DB)
}

// UserThread returns the last limit messages of a user's own thread for the
// bot. It has no read side effect.
func (s *MessagingService) UserThread(ctx context.Context, telegramID int64, limit int) ([]domain.CaseMessage, error) {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return repo.ListRecentThread(ctx, s.DB, u.ID, limit)
}

// Broadcast sends text to the given users or, when telegramIDs is empty, to
// every active partner.
func (s *MessagingService) Broadcast(ctx context.Context, text string, telegramIDs []int64) (BroadcastResult, error) {
	ctx, span := s.tracer().Start(ctx, "Broadcast",
		trace.WithAttributes(attribute.Int("recipients.requested", len(telegramIDs))))
	defer span.End()

	text, err := s.validate(text)
	if err != nil {
		return BroadcastResult{}, err
	}
	ids, err := repo.ListTelegramIDs(ctx, s.DB, telegramIDs)
	if err != nil {
		return BroadcastResult{}, err
	}
	res := BroadcastResult{Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if notify.Deliver(ctx, s.Notifier, id, text) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	span.SetAttributes(attribute.Int("sent", res.Sent), attribute.Int("failed", res.Failed))
	return res, nil
}

// Notify relays raw text to one chat without storing it.
func (s *MessagingService) Notify(ctx context.Context, telegramID int64, text string) (bool, error) {
	text, err := s.validate(text)
	if err != nil {
		return false, err
	}
	if telegramID == 0 {
		return false, ErrNoTarget
	}
	return notify.Deliver(ctx, s.Notifier, telegramID, text), nil
}
