// Package services – PayoutService
//
// PayoutService manages referral payouts: listing, creation, partial update,
// marking paid (single and batch) and monthly generation from the revenue
// ledger. A payout's PaidAt is set exactly once, on its transition to paid.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/commission"
	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PayoutInput creates a pending payout.
type PayoutInput struct {
	ReferrerID uint
	Amount     int64
	Month      int
	Year       int
}

// PayoutPatch is a partial update; nil fields are left unchanged.
type PayoutPatch struct {
	Amount *int64
	Month  *int
	Year   *int
	Status *string
}

// GenerateResult reports a monthly payout generation run.
type GenerateResult struct {
	Year    int                     `json:"year"`
	Month   int                     `json:"month"`
	Created []domain.ReferralPayout `json:"created"`
	Skipped int                     `json:"skipped"`
}

// PayoutService manages referral payouts.
type PayoutService struct {
	DB *gorm.DB

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *PayoutService) tracer() trace.Tracer { return otel.Tracer("services/PayoutService") }

func (s *PayoutService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

// List returns a page of payouts matching f, newest first.
func (s *PayoutService) List(ctx context.Context, f repo.PayoutFilter, page, pageSize int) ([]repo.PayoutRow, int64, error) {
	ctx, span := s.tracer().Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("status", f.Status),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		))
	defer span.End()

	if f.Status != "" && !domain.ValidPayoutStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}
	total, err := repo.CountPayouts(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []repo.PayoutRow{}, 0, nil
	}
	offset, limit := pageWindow(page, pageSize)
	rows, err := repo.ListPayoutRows(ctx, s.DB, f, offset, limit)
	return rows, total, err
}

// Count returns the number of payouts matching f.
func (s *PayoutService) Count(ctx context.Context, f repo.PayoutFilter) (int64, error) {
	if f.Status != "" && !domain.ValidPayoutStatus(f.Status) {
		return 0, ErrInvalidStatus
	}
	return repo.CountPayouts(ctx, s.DB, f)
}

// Get returns one payout.
func (s *PayoutService) Get(ctx context.Context, id uint) (*domain.ReferralPayout, error) {
	p, err := repo.GetPayout(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPayoutNotFound
	}
	return p, err
}

// Create stores a pending payout for an existing referrer.
func (s *PayoutService) Create(ctx context.Context, in PayoutInput) (*domain.ReferralPayout, error) {
	ctx, span := s.tracer().Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("referrer.id", int64(in.ReferrerID))))
	defer span.End()

	if in.Amount < 0 || !validPeriod(in.Month, in.Year) {
		return nil, ErrInvalidPayout
	}
	if _, err := repo.GetUser(ctx, s.DB, in.ReferrerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	p := &domain.ReferralPayout{
		ReferrerID: in.ReferrerID,
		Amount:     in.Amount,
		Month:      in.Month,
		Year:       in.Year,
		Status:     domain.PayoutPending,
		CreatedAt:  s.now(),
	}
	if err := repo.CreatePayout(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies patch. Setting status paid stamps PaidAt when it is not set
// yet; a paid payout can no longer change status.
func (s *PayoutService) Update(ctx context.Context, id uint, patch PayoutPatch) (*domain.ReferralPayout, error) {
	ctx, span := s.tracer().Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("payout.id", int64(id))))
	defer span.End()

	var out *domain.ReferralPayout
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPayout(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPayoutNotFound
		}
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if patch.Amount != nil {
			if *patch.Amount < 0 {
				return ErrInvalidPayout
			}
			fields["amount"] = *patch.Amount
			p.Amount = *patch.Amount
		}
		month, year := p.Month, p.Year
		if patch.Month != nil {
			month = *patch.Month
		}
		if patch.Year != nil {
			year = *patch.Year
		}
		if !validPeriod(month, year) {
			return ErrInvalidPayout
		}
		if month != p.Month {
			fields["month"] = month
			p.Month = month
		}
		if year != p.Year {
			fields["year"] = year
			p.Year = year
		}
		if patch.Status != nil && *patch.Status != p.Status {
			to := *patch.Status
			if !domain.ValidPayoutStatus(to) {
				return ErrInvalidStatus
			}
			if p.Status == domain.PayoutPaid {
				return ErrPayoutAlreadyPaid
			}
			fields["status"] = to
			p.Status = to
			if to == domain.PayoutPaid && p.PaidAt == nil {
				now := s.now()
				fields["paid_at"] = now
				p.PaidAt = &now
			}
		}
		if err := repo.UpdatePayoutFields(ctx, tx, id, fields); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid transitions one pending payout to paid.
func (s *PayoutService) MarkPaid(ctx context.Context, id uint) (*domain.ReferralPayout, error) {
	ctx, span := s.tracer().Start(ctx, "MarkPaid",
		trace.WithAttributes(attribute.Int64("payout.id", int64(id))))
	defer span.End()

	var out *domain.ReferralPayout
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPayout(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPayoutNotFound
		}
		if err != nil {
			return err
		}
		switch p.Status {
		case domain.PayoutPaid:
			return ErrPayoutAlreadyPaid
		case domain.PayoutCancelled:
			return ErrPayoutCancelled
		}
		now := s.now()
		n, err := repo.MarkPayoutsPaid(ctx, tx, []uint{id}, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPayoutAlreadyPaid
		}
		p.Status = domain.PayoutPaid
		p.PaidAt = &now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BatchMarkPaid pays every pending payout among ids in one transaction and
// returns how many changed. When any id is unknown (0 included) nothing is
// changed and a *MissingPayoutsError is returned.
func (s *PayoutService) BatchMarkPaid(ctx context.Context, ids []uint) (int64, error) {
	ctx, span := s.tracer().Start(ctx, "BatchMarkPaid",
		trace.WithAttributes(attribute.Int("payout.count", len(ids))))
	defer span.End()

	uniq := dedupeIDs(ids)
	if len(uniq) == 0 {
		return 0, ErrEmptyBatch
	}

	var changed int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := repo.GetPayouts(ctx, tx, uniq)
		if err != nil {
			return err
		}
		if len(found) != len(uniq) {
			have := make(map[uint]struct{}, len(found))
			for _, p := range found {
				have[p.ID] = struct{}{}
			}
			missing := &MissingPayoutsError{}
			for _, id := range uniq {
				if _, ok := have[id]; !ok {
					missing.IDs = append(missing.IDs, id)
				}
			}
			return missing
		}
		changed, err = repo.MarkPayoutsPaid(ctx, tx, uniq, s.now())
		return err
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("payout.changed", changed))
	return changed, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generate creates the pending payouts of one month. For every referrer the
// commission of each referred partner is computed from that partner's
// revenue in the month and summed; referrers with a zero sum, or with a
// non-cancelled payout for the month already, are skipped.
func (s *PayoutService) Generate(ctx context.Context, year, month int) (*GenerateResult, error) {
	ctx, span := s.tracer().Start(ctx, "Generate",
		trace.WithAttributes(attribute.Int("year", year), attribute.Int("month", month)))
	defer span.End()

	if !validPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}
	from, to := monthRange(year, time.Month(month))
	res := &GenerateResult{Year: year, Month: month, Created: []domain.ReferralPayout{}}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referrers, err := repo.ReferrerIDs(ctx, tx)
		if err != nil {
			return err
		}
		for _, rid := range referrers {
			exists, err := repo.PayoutExists(ctx, tx, rid, year, month)
			if err != nil {
				return err
			}
			if exists {
				res.Skipped++
				continue
			}
			referred, err := repo.ListReferred(ctx, tx, rid)
			if err != nil {
				return err
			}
			ids := make([]uint, len(referred))
			for i, u := range referred {
				ids[i] = u.ID
			}
			sums, err := repo.SumRevenueByPartner(ctx, tx, ids, from, to)
			if err != nil {
				return err
			}
			totals := make([]int64, 0, len(sums))
			for _, v := range sums {
				totals = append(totals, v)
			}
			amount := commission.Total(totals)
			if amount <= 0 {
				res.Skipped++
				continue
			}
			p := domain.ReferralPayout{
				ReferrerID: rid,
				Amount:     amount,
				Month:      month,
				Year:       year,
				Status:     domain.PayoutPending,
				CreatedAt:  s.now(),
			}
			if err := repo.CreatePayout(ctx, tx, &p); err != nil {
				return fmt.Errorf("create payout for referrer %d: %w", rid, err)
			}
			res.Created = append(res.Created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("payouts.created", len(res.Created)))
	return res, nil
}
