package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// CreateNotificationLog records one reminder attempt.
func CreateNotificationLog(ctx context.Context, db *gorm.DB, l *domain.NotificationLog) error {
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(l).Error
}

// ReminderState returns how many reminders of kind reached a user and when
// the last one was delivered (nil when none). Failed sends are logged but
// not counted.
func ReminderState(ctx context.Context, db *gorm.DB, userID uint, kind string) (attempts int, last *time.Time, err error) {
	q := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.NotificationLog{}).
			Where("user_id = ? AND kind = ? AND delivered = ?", userID, kind, true)
	}

	var n int64
	if err = q().Count(&n).Error; err != nil {
		return 0, nil, err
	}
	if n == 0 {
		return 0, nil, nil
	}

	// Latest sent_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		SentAt time.Time
	}
	if err = q().Select("sent_at").Order("sent_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return int(n), &row.SentAt, nil
}
