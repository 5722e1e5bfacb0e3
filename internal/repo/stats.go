package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// MessagesStamp returns aggregate metadata over case messages: the total
// number of rows, the number of unread client messages and the newest
// CreatedAt (nil when there are no messages). The HTTP layer derives a weak
// ETag for the dialog list from it.
func MessagesStamp(ctx context.Context, db *gorm.DB) (count, unread int64, newest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.CaseMessage{})

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, nil, err
	}
	if count == 0 {
		return 0, 0, nil, nil
	}
	if unread, err = CountUnread(ctx, db); err != nil {
		return 0, 0, nil, err
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.CaseMessage{}).
		Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return count, unread, &row.CreatedAt, nil
}
