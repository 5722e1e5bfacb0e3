package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// PayoutFilter narrows payout listings. Zero values match all. Search is a
// case-insensitive substring match on the referrer's first name and username.
type PayoutFilter struct {
	Status     string
	Month      int
	Year       int
	ReferrerID uint
	Search     string
}

func (f PayoutFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("p.status = ?", f.Status)
	}
	if f.Month != 0 {
		q = q.Where("p.month = ?", f.Month)
	}
	if f.Year != 0 {
		q = q.Where("p.year = ?", f.Year)
	}
	if f.ReferrerID != 0 {
		q = q.Where("p.referrer_id = ?", f.ReferrerID)
	}
	if f.Search != "" {
		s := likePattern(f.Search)
		q = q.Where(`(LOWER(u.first_name) LIKE ? ESCAPE '\' OR LOWER(u.username) LIKE ? ESCAPE '\')`, s, s)
	}
	return q
}

// PayoutRow is a payout joined with its referrer.
type PayoutRow struct {
	ID                 uint       `json:"id"`
	ReferrerID         uint       `json:"referrer_id"`
	ReferrerTelegramID int64      `json:"referrer_telegram_id"`
	ReferrerName       string     `json:"referrer_name"`
	ReferrerUsername   string     `json:"referrer_username"`
	Amount             int64      `json:"amount"`
	Month              int        `json:"month"`
	Year               int        `json:"year"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
}

func payoutRows(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Table("referral_payouts p").
		Joins("JOIN users u ON u.id = p.referrer_id")
}

// CreatePayout inserts a payout. CreatedAt defaults to now.
func CreatePayout(ctx context.Context, db *gorm.DB, p *domain.ReferralPayout) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPayout fetches a payout by id.
func GetPayout(ctx context.Context, db *gorm.DB, id uint) (*domain.ReferralPayout, error) {
	var p domain.ReferralPayout
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPayouts fetches the payouts with the given ids. Missing ids are simply
// absent from the result.
func GetPayouts(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.ReferralPayout, error) {
	var out []domain.ReferralPayout
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

// CountPayouts counts payouts matching f.
func CountPayouts(ctx context.Context, db *gorm.DB, f PayoutFilter) (int64, error) {
	var n int64
	err := f.apply(payoutRows(ctx, db)).Count(&n).Error
	return n, err
}

// ListPayoutRows returns a page of payouts matching f, newest first.
func ListPayoutRows(ctx context.Context, db *gorm.DB, f PayoutFilter, offset, limit int) ([]PayoutRow, error) {
	var out []PayoutRow
	err := f.apply(payoutRows(ctx, db)).
		Select(`p.id, p.referrer_id, u.telegram_id AS referrer_telegram_id, u.first_name AS referrer_name,
		        u.username AS referrer_username, p.amount, p.month, p.year, p.status, p.created_at, p.paid_at`).
		Order("p.created_at DESC").Order("p.id DESC").
		Offset(offset).Limit(limit).
		Scan(&out).Error
	return out, err
}

// ListPayoutsByReferrer returns the newest payouts of one referrer.
func ListPayoutsByReferrer(ctx context.Context, db *gorm.DB, referrerID uint, limit int) ([]domain.ReferralPayout, error) {
	var out []domain.ReferralPayout
	err := db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdatePayoutFields applies a partial update to a payout.
func UpdatePayoutFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := db.WithContext(ctx).Model(&domain.ReferralPayout{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPayoutsPaid transitions the given pending payouts to paid, skipping
// those already paid or cancelled, and returns the number of rows changed.
func MarkPayoutsPaid(ctx context.Context, db *gorm.DB, ids []uint, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Model(&domain.ReferralPayout{}).
		Where("id IN ? AND status = ?", ids, domain.PayoutPending).
		Updates(map[string]any{"status": domain.PayoutPaid, "paid_at": at})
	return res.RowsAffected, res.Error
}

// PayoutExists reports whether a referrer already has a payout for a period.
// Cancelled payouts do not count.
func PayoutExists(ctx context.Context, db *gorm.DB, referrerID uint, year, month int) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ReferralPayout{}).
		Where("referrer_id = ? AND year = ? AND month = ? AND status <> ?", referrerID, year, month, domain.PayoutCancelled).
		Count(&n).Error
	return n > 0, err
}

// SumPayoutsByStatus returns the total amount per payout status.
func SumPayoutsByStatus(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.WithContext(ctx).Model(&domain.ReferralPayout{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}
