package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/lawdesk/internal/domain"
)

// GetProfileByUserID fetches the partner profile of a user.
func GetProfileByUserID(ctx context.Context, db *gorm.DB, userID uint) (*domain.PartnerProfile, error) {
	var p domain.PartnerProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts p or, when the user already has a profile, updates
// its contact fields in place. The consent flag is left untouched on update.
func UpsertProfile(ctx context.Context, db *gorm.DB, p *domain.PartnerProfile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "company_name", "phone", "email", "specialization", "experience", "updated_at",
		}),
	}).Create(p).Error
}

// SetConsent updates the consent flag and returns ErrNotFound when the user
// has no profile.
func SetConsent(ctx context.Context, db *gorm.DB, userID uint, consent bool) error {
	res := db.WithContext(ctx).Model(&domain.PartnerProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"consent_to_share_data": consent, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProfiles returns the number of partner profiles.
func CountProfiles(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.PartnerProfile{}).Count(&n).Error
	return n, err
}
