package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// GetIdempotency returns a non-expired record for (actor, scope, key) or
// ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, actor, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("actor = ? AND scope = ? AND key = ? AND expires_at > ?", actor, scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
// Expired records with the same key are purged first so keys can be reused
// after their TTL.
func CreateIdempotency(ctx context.Context, db *gorm.DB, actor, scope, key string, resourceID uint, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).
		Where("actor = ? AND scope = ? AND key = ? AND expires_at <= ?", actor, scope, key, now).
		Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, err
	}
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		Actor:      actor,
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, mapCreateErr(err)
	}
	return rec, nil
}
