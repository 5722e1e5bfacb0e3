// Package repo implements the data persistence layer for domain entities,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations on insert are reported as ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// UserFilter narrows user listings. Search is a case-insensitive substring
// match on username, first name and last name.
type UserFilter struct {
	Search string
}

func (f UserFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(`(LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(users.first_name) LIKE ? ESCAPE '\' OR LOWER(users.last_name) LIKE ? ESCAPE '\')`, p, p, p)
	}
	return q
}

// CreateUser inserts u. RegisteredAt defaults to now (UTC).
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now().UTC()
	}
	return mapCreateErr(db.WithContext(ctx).Create(u).Error)
}

// GetUser fetches a user by primary key.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByTelegramID fetches a user by external identity.
func GetUserByTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserNames overwrites the display fields of a user.
func UpdateUserNames(ctx context.Context, db *gorm.DB, id uint, username, firstName, lastName string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"username": username, "first_name": firstName, "last_name": lastName})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserActive flips the is_active flag.
func SetUserActive(ctx context.Context, db *gorm.DB, id uint, active bool) error {
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("is_active", active).Error
}

// CountUsers returns the number of users matching f.
func CountUsers(ctx context.Context, db *gorm.DB, f UserFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.User{})).Count(&n).Error
	return n, err
}

// ListUsersPage returns a page of users matching f, newest first, with
// partner profiles preloaded.
func ListUsersPage(ctx context.Context, db *gorm.DB, f UserFilter, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := f.apply(db.WithContext(ctx).Model(&domain.User{})).
		Preload("Profile").
		Order("registered_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPartners returns users that have a partner profile, newest first.
func ListPartners(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		InnerJoins("Profile").
		Order("users.registered_at DESC").
		Find(&out).Error
	return out, err
}

// ListUsersWithoutProfile returns active users registered before cutoff
// that have not filled in a partner profile.
func ListUsersWithoutProfile(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("registered_at <= ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM partner_profiles p WHERE p.user_id = users.id)").
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListTelegramIDs returns the telegram ids of the given users, or of every
// user with a partner profile when ids is empty.
func ListTelegramIDs(ctx context.Context, db *gorm.DB, telegramIDs []int64) ([]int64, error) {
	var out []int64
	q := db.WithContext(ctx).Model(&domain.User{}).Where("is_active = ?", true)
	if len(telegramIDs) > 0 {
		q = q.Where("telegram_id IN ?", telegramIDs)
	} else {
		q = q.Where("EXISTS (SELECT 1 FROM partner_profiles p WHERE p.user_id = users.id)")
	}
	err := q.Order("id ASC").Pluck("telegram_id", &out).Error
	return out, err
}
