package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// GetReferralLinkByPartner fetches the invitation code of a partner.
func GetReferralLinkByPartner(ctx context.Context, db *gorm.DB, partnerID uint) (*domain.ReferralLink, error) {
	var l domain.ReferralLink
	if err := db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// GetReferralLinkByCode resolves an invitation code.
func GetReferralLinkByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ReferralLink, error) {
	var l domain.ReferralLink
	if err := db.WithContext(ctx).Where("code = ?", code).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateReferralLink inserts a code for a partner. It returns ErrDuplicate
// when either the code or the partner already has a row.
func CreateReferralLink(ctx context.Context, db *gorm.DB, partnerID uint, code string) (*domain.ReferralLink, error) {
	l := &domain.ReferralLink{PartnerID: partnerID, Code: code, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, mapCreateErr(err)
	}
	return l, nil
}

// GetRelationshipByReferred returns the edge pointing at a referred user.
func GetRelationshipByReferred(ctx context.Context, db *gorm.DB, referredID uint) (*domain.ReferralRelationship, error) {
	var r domain.ReferralRelationship
	if err := db.WithContext(ctx).Where("referred_id = ?", referredID).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRelationship inserts a referrer -> referred edge. A second edge for
// the same referred user yields ErrDuplicate.
func CreateRelationship(ctx context.Context, db *gorm.DB, referrerID, referredID uint) (*domain.ReferralRelationship, error) {
	r := &domain.ReferralRelationship{ReferrerID: referrerID, ReferredID: referredID, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, mapCreateErr(err)
	}
	return r, nil
}

// ListReferred returns the users referred by referrerID, oldest first.
func ListReferred(ctx context.Context, db *gorm.DB, referrerID uint) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Joins("JOIN referral_relationships r ON r.referred_id = users.id").
		Where("r.referrer_id = ?", referrerID).
		Order("r.created_at ASC").
		Find(&out).Error
	return out, err
}

// ReferrerRow is one referrer with the number of users they referred.
type ReferrerRow struct {
	UserID     uint   `json:"user_id"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Referrals  int64  `json:"referrals"`
}

// ListReferrers returns every user with at least one referral, most
// referrals first.
func ListReferrers(ctx context.Context, db *gorm.DB) ([]ReferrerRow, error) {
	var out []ReferrerRow
	err := db.WithContext(ctx).Table("referral_relationships r").
		Select("u.id AS user_id, u.telegram_id, u.username, u.first_name, u.last_name, COUNT(r.id) AS referrals").
		Joins("JOIN users u ON u.id = r.referrer_id").
		Group("u.id, u.telegram_id, u.username, u.first_name, u.last_name").
		Order("referrals DESC").Order("u.id ASC").
		Scan(&out).Error
	return out, err
}

// EdgeRow is one referral edge with both ends resolved.
type EdgeRow struct {
	ReferrerID         uint      `json:"referrer_id"`
	ReferrerTelegramID int64     `json:"referrer_telegram_id"`
	ReferrerName       string    `json:"referrer_name"`
	ReferredID         uint      `json:"referred_id"`
	ReferredTelegramID int64     `json:"referred_telegram_id"`
	ReferredName       string    `json:"referred_name"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListEdges returns every referral edge, grouped by referrer.
func ListEdges(ctx context.Context, db *gorm.DB) ([]EdgeRow, error) {
	var out []EdgeRow
	err := db.WithContext(ctx).Table("referral_relationships r").
		Select(`r.referrer_id, a.telegram_id AS referrer_telegram_id, a.first_name AS referrer_name,
		        r.referred_id, b.telegram_id AS referred_telegram_id, b.first_name AS referred_name, r.created_at`).
		Joins("JOIN users a ON a.id = r.referrer_id").
		Joins("JOIN users b ON b.id = r.referred_id").
		Order("r.referrer_id ASC").Order("r.created_at ASC").
		Scan(&out).Error
	return out, err
}

// CountReferred returns how many users referrerID referred.
func CountReferred(ctx context.Context, db *gorm.DB, referrerID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ReferralRelationship{}).Where("referrer_id = ?", referrerID).Count(&n).Error
	return n, err
}

// CountRelationships returns the total number of referral edges.
func CountRelationships(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ReferralRelationship{}).Count(&n).Error
	return n, err
}

// ReferrerIDs returns the distinct referrer ids.
func ReferrerIDs(ctx context.Context, db *gorm.DB) ([]uint, error) {
	var out []uint
	err := db.WithContext(ctx).Model(&domain.ReferralRelationship{}).
		Distinct("referrer_id").Order("referrer_id").
		Pluck("referrer_id", &out).Error
	return out, err
}
