package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// CreateMessage appends a message to a thread. CreatedAt defaults to now.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.CaseMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// CountThread returns the number of messages in a user's thread.
func CountThread(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.CaseMessage{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// ListThreadPage returns a page of a user's thread in chronological order.
func ListThreadPage(ctx context.Context, db *gorm.DB, userID uint, offset, limit int) ([]domain.CaseMessage, error) {
	var out []domain.CaseMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecentThread returns the last limit messages of a thread, oldest first.
func ListRecentThread(ctx context.Context, db *gorm.DB, userID uint, limit int) ([]domain.CaseMessage, error) {
	var out []domain.CaseMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListCaseMessages returns the messages filed under one questionnaire,
// oldest first.
func ListCaseMessages(ctx context.Context, db *gorm.DB, questionnaireID uint) ([]domain.CaseMessage, error) {
	var out []domain.CaseMessage
	err := db.WithContext(ctx).
		Where("questionnaire_id = ?", questionnaireID).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListGeneralMessages returns a user's messages that are not filed under any
// questionnaire.
func ListGeneralMessages(ctx context.Context, db *gorm.DB, userID uint) ([]domain.CaseMessage, error) {
	var out []domain.CaseMessage
	err := db.WithContext(ctx).
		Where("user_id = ? AND questionnaire_id IS NULL", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// MarkThreadRead marks every unread client message of a user as read and
// returns how many rows changed.
func MarkThreadRead(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.CaseMessage{}).
		Where("user_id = ? AND sender_kind = ? AND is_read = ?", userID, domain.SenderClient, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// MarkCaseRead marks unread client messages filed under a questionnaire.
func MarkCaseRead(ctx context.Context, db *gorm.DB, questionnaireID uint) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.CaseMessage{}).
		Where("questionnaire_id = ? AND sender_kind = ? AND is_read = ?", questionnaireID, domain.SenderClient, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// DialogRow summarizes one user's thread for the staff dialog list.
type DialogRow struct {
	UserID         uint      `json:"user_id"`
	TelegramID     int64     `json:"telegram_id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	LastMessage    string    `json:"last_message"`
	LastSenderKind string    `json:"last_sender_kind"`
	LastMessageAt  time.Time `json:"last_message_at"`
	Unread         int64     `json:"unread"`
}

// ListDialogs returns one row per user that has at least one message,
// ordered by the latest message first.
func ListDialogs(ctx context.Context, db *gorm.DB) ([]DialogRow, error) {
	var out []DialogRow
	err := db.WithContext(ctx).Raw(`
SELECT u.id AS user_id, u.telegram_id, u.username, u.first_name, u.last_name,
       m.content AS last_message, m.sender_kind AS last_sender_kind, m.created_at AS last_message_at,
       (SELECT COUNT(*) FROM case_messages c
         WHERE c.user_id = u.id AND c.sender_kind = ? AND c.is_read = ?) AS unread
FROM users u
JOIN case_messages m ON m.id = (SELECT MAX(x.id) FROM case_messages x WHERE x.user_id = u.id)
ORDER BY m.created_at DESC, m.id DESC`, domain.SenderClient, false).Scan(&out).Error
	return out, err
}

// CountUnread returns the number of unread client messages across all threads.
func CountUnread(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.CaseMessage{}).
		Where("sender_kind = ? AND is_read = ?", domain.SenderClient, false).
		Count(&n).Error
	return n, err
}
