// Package services – UserService
//
// UserService owns the lifecycle of bot users: get-or-create on first
// contact, refresh of display fields and the active flag.
package services

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TelegramUser is the identity a bot update carries.
type TelegramUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// UserService manages bot users.
type UserService struct {
	DB *gorm.DB
}

// Touch returns the user for tu, creating it on first contact. Display
// fields are refreshed when they changed and an inactive user is marked
// active again. created reports whether the row was inserted.
func (s *UserService) Touch(ctx context.Context, tu TelegramUser) (u *domain.User, created bool, err error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "Touch",
		trace.WithAttributes(attribute.Int64("telegram.id", tu.ID)))
	defer span.End()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gerr := repo.GetUserByTelegramID(ctx, tx, tu.ID)
		switch {
		case gerr == nil:
			u = existing
		case errors.Is(gerr, repo.ErrNotFound):
			u = &domain.User{TelegramID: tu.ID, Username: tu.Username, FirstName: tu.FirstName, LastName: tu.LastName, IsActive: true}
			if cerr := repo.CreateUser(ctx, tx, u); cerr != nil {
				return cerr
			}
			created = true
			return nil
		default:
			return gerr
		}

		if u.Username != tu.Username || u.FirstName != tu.FirstName || u.LastName != tu.LastName {
			if uerr := repo.UpdateUserNames(ctx, tx, u.ID, tu.Username, tu.FirstName, tu.LastName); uerr != nil {
				return uerr
			}
			u.Username, u.FirstName, u.LastName = tu.Username, tu.FirstName, tu.LastName
		}
		if !u.IsActive {
			if aerr := repo.SetUserActive(ctx, tx, u.ID, true); aerr != nil {
				return aerr
			}
			u.IsActive = true
		}
		return nil
	})
	if err != nil {
		// A concurrent first contact may have won the insert.
		if repo.IsDuplicate(err) {
			u, err = s.ByTelegramID(ctx, tu.ID)
			return u, false, err
		}
		return nil, false, err
	}
	return u, created, nil
}

// ByTelegramID resolves a user by Telegram id.
func (s *UserService) ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// MarkBlocked clears the active flag of a user who blocked the bot.
func (s *UserService) MarkBlocked(ctx context.Context, telegramID int64) error {
	u, err := s.ByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	return repo.SetUserActive(ctx, s.DB, u.ID, false)
}

// placeholderUser is created when a message arrives from a Telegram id that
// never went through /start.
func placeholderUser(telegramID int64) *domain.User {
	return &domain.User{
		TelegramID: telegramID,
		Username:   "user_" + strconv.FormatInt(telegramID, 10),
		FirstName:  "Client",
		IsActive:   true,
	}
}

// ensureUser resolves a user by Telegram id inside tx, creating a
// placeholder when missing. Losing the insert race to a concurrent first
// contact surfaces as a duplicate error; callers retry the transaction.
func ensureUser(ctx context.Context, tx *gorm.DB, telegramID int64) (*domain.User, error) {
	u, err := repo.GetUserByTelegramID(ctx, tx, telegramID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	u = placeholderUser(telegramID)
	if err := repo.CreateUser(ctx, tx, u); err != nil {
		return nil, err
	}
	return u, nil
}
