package services

import (
	"context"
	"errors"
	"fmt"
	"html"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProfileService stores partner profiles and tells the partners chat about
// new and updated ones.
type ProfileService struct {
	DB             *gorm.DB
	Notifier       notify.Notifier
	PartnersChatID int64
}

// Get returns the profile of the user with telegramID.
func (s *ProfileService) Get(ctx context.Context, telegramID int64) (*domain.PartnerProfile, error) {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	p, err := repo.GetProfileByUserID(ctx, s.DB, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// Save upserts the profile collected by f for the user with telegramID.
// created reports whether this is the user's first profile.
func (s *ProfileService) Save(ctx context.Context, telegramID int64, f *forms.ProfileForm) (p *domain.PartnerProfile, created bool, err error) {
	ctx, span := otel.Tracer("services/ProfileService").Start(ctx, "Save",
		trace.WithAttributes(attribute.Int64("telegram.id", telegramID)))
	defer span.End()

	if f == nil || !f.Done() {
		return nil, false, ErrNotReady
	}

	var u *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gerr error
		u, gerr = repo.GetUserByTelegramID(ctx, tx, telegramID)
		if errors.Is(gerr, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if gerr != nil {
			return gerr
		}
		_, gerr = repo.GetProfileByUserID(ctx, tx, u.ID)
		switch {
		case errors.Is(gerr, repo.ErrNotFound):
			created = true
		case gerr != nil:
			return gerr
		}
		p = &domain.PartnerProfile{
			UserID:         u.ID,
			FullName:       f.FullName,
			CompanyName:    f.CompanyName,
			Phone:          f.Phone,
			Email:          f.Email,
			Specialization: f.Specialization,
			Experience:     f.Experience,
		}
		if uerr := repo.UpsertProfile(ctx, tx, p); uerr != nil {
			return uerr
		}
		p, gerr = repo.GetProfileByUserID(ctx, tx, u.ID)
		return gerr
	})
	if err != nil {
		return nil, false, err
	}

	verb := "updated"
	if created {
		verb = "registered"
	}
	notify.Deliver(ctx, s.Notifier, s.PartnersChatID, fmt.Sprintf(
		"👤 <b>Partner %s</b>\nName: %s\nCompany: %s\nPhone: %s\nE-mail: %s\nSpecialization: %s\nExperience: %d years\nTelegram: %d",
		verb,
		html.EscapeString(p.FullName), html.EscapeString(p.CompanyName), html.EscapeString(p.Phone),
		html.EscapeString(p.Email), html.EscapeString(p.Specialization), p.Experience, telegramID,
	))
	return p, created, nil
}

// SetConsent records whether the partner agrees to share their data.
func (s *ProfileService) SetConsent(ctx context.Context, telegramID int64, consent bool) error {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := repo.SetConsent(ctx, s.DB, u.ID, consent); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}
