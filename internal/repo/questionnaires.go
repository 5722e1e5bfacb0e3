package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

// QuestionnaireFilter narrows questionnaire listings. Zero values match all.
type QuestionnaireFilter struct {
	Status string
	UserID uint
}

func (f QuestionnaireFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	return q
}

// CreateQuestionnaire inserts q together with its Documents.
func CreateQuestionnaire(ctx context.Context, db *gorm.DB, q *domain.CaseQuestionnaire) error {
	return db.WithContext(ctx).Create(q).Error
}

// GetQuestionnaire fetches a questionnaire with its documents.
func GetQuestionnaire(ctx context.Context, db *gorm.DB, id uint) (*domain.CaseQuestionnaire, error) {
	var q domain.CaseQuestionnaire
	err := db.WithContext(ctx).
		Preload("Documents", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// LatestQuestionnaireForUser returns the most recently created questionnaire
// of a user, or ErrNotFound.
func LatestQuestionnaireForUser(ctx context.Context, db *gorm.DB, userID uint) (*domain.CaseQuestionnaire, error) {
	var q domain.CaseQuestionnaire
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CountQuestionnaires returns the number of questionnaires matching f.
func CountQuestionnaires(ctx context.Context, db *gorm.DB, f QuestionnaireFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.CaseQuestionnaire{})).Count(&n).Error
	return n, err
}

// ListQuestionnairesPage returns a page of questionnaires, newest first.
func ListQuestionnairesPage(ctx context.Context, db *gorm.DB, f QuestionnaireFilter, offset, limit int) ([]domain.CaseQuestionnaire, error) {
	var out []domain.CaseQuestionnaire
	err := f.apply(db.WithContext(ctx).Model(&domain.CaseQuestionnaire{})).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateQuestionnaireStatus moves a questionnaire from one status to another.
// It returns ErrNotFound when no row with (id, from) exists, which callers
// treat as a lost race or a stale status.
func UpdateQuestionnaireStatus(ctx context.Context, db *gorm.DB, id uint, from, to string) error {
	res := db.WithContext(ctx).Model(&domain.CaseQuestionnaire{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StatusCount is one row of CountQuestionnairesByStatus.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountQuestionnairesByStatus groups questionnaires by status.
func CountQuestionnairesByStatus(ctx context.Context, db *gorm.DB) ([]StatusCount, error) {
	var out []StatusCount
	err := db.WithContext(ctx).Model(&domain.CaseQuestionnaire{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&out).Error
	return out, err
}
