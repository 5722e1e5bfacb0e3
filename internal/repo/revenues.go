package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// CreateRevenue appends a ledger entry. CreatedAt defaults to now.
func CreateRevenue(ctx context.Context, db *gorm.DB, r *domain.PartnerRevenue) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// GetRevenue fetches a ledger entry by id.
func GetRevenue(ctx context.Context, db *gorm.DB, id uint) (*domain.PartnerRevenue, error) {
	var r domain.PartnerRevenue
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// RevenueRow is a ledger entry joined with its partner.
type RevenueRow struct {
	ID              uint      `json:"id"`
	PartnerID       uint      `json:"partner_id"`
	TelegramID      int64     `json:"telegram_id"`
	PartnerName     string    `json:"partner_name"`
	CompanyName     string    `json:"company_name"`
	Amount          int64     `json:"amount"`
	Description     string    `json:"description"`
	ClientReference *string   `json:"client_reference,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func revenueRows(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Table("partner_revenues r").
		Select(`r.id, r.partner_id, u.telegram_id,
		        COALESCE(p.full_name, u.first_name) AS partner_name, COALESCE(p.company_name, '') AS company_name,
		        r.amount, r.description, r.client_reference, r.created_at`).
		Joins("JOIN users u ON u.id = r.partner_id").
		Joins("LEFT JOIN partner_profiles p ON p.user_id = r.partner_id")
}

// CountRevenues counts ledger entries, optionally for one partner (0 = all).
func CountRevenues(ctx context.Context, db *gorm.DB, partnerID uint) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.PartnerRevenue{})
	if partnerID != 0 {
		q = q.Where("partner_id = ?", partnerID)
	}
	err := q.Count(&n).Error
	return n, err
}

// ListRevenueRows returns a page of ledger entries joined with partner data,
// newest first, optionally for one partner (0 = all).
func ListRevenueRows(ctx context.Context, db *gorm.DB, partnerID uint, offset, limit int) ([]RevenueRow, error) {
	var out []RevenueRow
	q := revenueRows(ctx, db)
	if partnerID != 0 {
		q = q.Where("r.partner_id = ?", partnerID)
	}
	err := q.Order("r.created_at DESC").Order("r.id DESC").Offset(offset).Limit(limit).Scan(&out).Error
	return out, err
}

// SumRevenueByPartner sums ledger entries per partner within [from, to).
// Partners without entries are absent from the map.
func SumRevenueByPartner(ctx context.Context, db *gorm.DB, partnerIDs []uint, from, to time.Time) (map[uint]int64, error) {
	out := make(map[uint]int64, len(partnerIDs))
	if len(partnerIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PartnerID uint
		Total     int64
	}
	err := db.WithContext(ctx).Model(&domain.PartnerRevenue{}).
		Select("partner_id, COALESCE(SUM(amount), 0) AS total").
		Where("partner_id IN ? AND created_at >= ? AND created_at < ?", partnerIDs, from, to).
		Group("partner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PartnerID] = r.Total
	}
	return out, nil
}

// SumRevenue returns the sum of every ledger entry.
func SumRevenue(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.PartnerRevenue{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
