package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/commission"
	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8
	codeAttempts = 5

	// PayoutHistoryLimit is the number of payouts shown to a partner.
	PayoutHistoryLimit = 20
)

// ReferralService manages invitation codes, referral edges and the partner's
// view of their commission.
type ReferralService struct {
	DB     *gorm.DB
	BotURL string

	// NewCode generates a candidate code; defaults to RandomCode.
	NewCode func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// RandomCode returns 8 random upper-case alphanumerics.
func RandomCode() string {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand: %v", err))
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}

func (s *ReferralService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// URL returns the invitation link for code.
func (s *ReferralService) URL(code string) string {
	return s.BotURL + "?start=" + code
}

// LinkFor returns the invitation code of a user, creating one on first use.
// Code collisions are retried with a fresh code.
func (s *ReferralService) LinkFor(ctx context.Context, userID uint) (*domain.ReferralLink, error) {
	ctx, span := otel.Tracer("services/ReferralService").Start(ctx, "LinkFor",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	l, err := repo.GetReferralLinkByPartner(ctx, s.DB, userID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	gen := s.NewCode
	if gen == nil {
		gen = RandomCode
	}
	for i := 0; i < codeAttempts; i++ {
		l, err = repo.CreateReferralLink(ctx, s.DB, userID, gen())
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
		// Either the code collided or a concurrent call created our link.
		if existing, gerr := repo.GetReferralLinkByPartner(ctx, s.DB, userID); gerr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("referral code: %d collisions in a row", codeAttempts)
}

// Redeem records that the user with referredTelegramID was invited by the
// owner of code. A user is referred at most once; a second redemption
// returns ErrAlreadyReferred and leaves the existing edge in place.
func (s *ReferralService) Redeem(ctx context.Context, code string, referredTelegramID int64) (*domain.ReferralRelationship, error) {
	ctx, span := otel.Tracer("services/ReferralService").Start(ctx, "Redeem",
		trace.WithAttributes(
			attribute.String("referral.code", code),
			attribute.Int64("telegram.id", referredTelegramID),
		))
	defer span.End()

	code = strings.ToUpper(strings.TrimSpace(code))
	var rel *domain.ReferralRelationship
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := repo.GetReferralLinkByCode(ctx, tx, code)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnknownReferralCode
		}
		if err != nil {
			return err
		}
		referred, err := repo.GetUserByTelegramID(ctx, tx, referredTelegramID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if referred.ID == link.PartnerID {
			return ErrSelfReferral
		}
		if _, err := repo.GetRelationshipByReferred(ctx, tx, referred.ID); err == nil {
			return ErrAlreadyReferred
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		rel, err = repo.CreateRelationship(ctx, tx, link.PartnerID, referred.ID)
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrAlreadyReferred
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// ReferredEarning is the current-month view of one referred partner.
type ReferredEarning struct {
	User       domain.User
	Revenue    int64
	Percent    float64
	Commission int64
}

// ReferralOverview is what a partner sees on the referral program screen.
type ReferralOverview struct {
	Code     string
	URL      string
	Month    time.Month
	Year     int
	Referred []ReferredEarning
	Total    int64
}

// Overview computes the referral screen for userID: the invitation link and,
// for every referred partner, their revenue in the current calendar month,
// the tier percentage and the resulting commission.
func (s *ReferralService) Overview(ctx context.Context, userID uint) (*ReferralOverview, error) {
	ctx, span := otel.Tracer("services/ReferralService").Start(ctx, "Overview",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	link, err := s.LinkFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	referred, err := repo.ListReferred(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from, to := monthRange(now.Year(), now.Month())
	ids := make([]uint, len(referred))
	for i, u := range referred {
		ids[i] = u.ID
	}
	sums, err := repo.SumRevenueByPartner(ctx, s.DB, ids, from, to)
	if err != nil {
		return nil, err
	}

	out := &ReferralOverview{
		Code:     link.Code,
		URL:      s.URL(link.Code),
		Month:    now.Month(),
		Year:     now.Year(),
		Referred: make([]ReferredEarning, 0, len(referred)),
	}
	for _, u := range referred {
		rev := sums[u.ID]
		e := ReferredEarning{User: u, Revenue: rev, Percent: commission.Percent(rev), Commission: commission.Amount(rev)}
		out.Total += e.Commission
		out.Referred = append(out.Referred, e)
	}
	return out, nil
}

// PayoutHistory returns the newest payouts of a referrer.
func (s *ReferralService) PayoutHistory(ctx context.Context, userID uint) ([]domain.ReferralPayout, error) {
	return repo.ListPayoutsByReferrer(ctx, s.DB, userID, PayoutHistoryLimit)
}

// monthRange returns [first day of month, first day of next month) in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
