package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusLabels are the human-readable questionnaire statuses.
var StatusLabels = map[string]string{
	domain.StatusNew:        "🆕 New",
	domain.StatusInProgress: "⏳ In progress",
	domain.StatusCompleted:  "✅ Completed",
	domain.StatusRejected:   "❌ Rejected",
}

// searchScanLimit bounds how many of the newest cases a search looks at.
const searchScanLimit = 2000

// CaseHit is a case matching a staff search, with the answer that matched.
type CaseHit struct {
	Case    domain.CaseQuestionnaire `json:"case"`
	Snippet string                   `json:"snippet" example:"Supplier did not deliver the goods"`
	Score   float64                  `json:"score" example:"0.5"`
}

// QuestionnaireService persists submitted case questionnaires and lets staff
// move them through their statuses.
type QuestionnaireService struct {
	DB       *gorm.DB
	Notifier notify.Notifier

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *QuestionnaireService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Submit stores a completed form for the user with telegramID. The
// questionnaire and its document rows are inserted in one transaction with
// status new; nothing is persisted when the user is unknown.
func (s *QuestionnaireService) Submit(ctx context.Context, telegramID int64, q *forms.Questionnaire) (*domain.CaseQuestionnaire, error) {
	ctx, span := otel.Tracer("services/QuestionnaireService").Start(ctx, "Submit",
		trace.WithAttributes(attribute.Int64("telegram.id", telegramID)))
	defer span.End()

	if q == nil || !q.ReadyToSubmit() {
		return nil, ErrNotReady
	}

	now := s.now()
	var out *domain.CaseQuestionnaire
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUserByTelegramID(ctx, tx, telegramID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		a := q.Answers
		out = &domain.CaseQuestionnaire{
			UserID:            u.ID,
			PartiesInfo:       a[0],
			DisputeSubject:    a[1],
			LegalBasis:        a[2],
			Chronology:        a[3],
			Evidence:          a[4],
			ProceduralHistory: a[5],
			ClientGoal:        a[6],
			Status:            domain.StatusNew,
			CreatedAt:         now,
			SentAt:            &now,
		}
		for _, att := range q.Attachments {
			uploaded := att.UploadedAt
			if uploaded.IsZero() {
				uploaded = now
			}
			out.Documents = append(out.Documents, domain.CaseQuestionnaireDocument{
				Section:      domain.SectionGeneral,
				FilePath:     att.Path,
				FileType:     att.FileType,
				OriginalName: att.OriginalName,
				UploadedAt:   uploaded,
			})
		}
		return repo.CreateQuestionnaire(ctx, tx, out)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("case.id", int64(out.ID)))
	return out, nil
}

// ForUser returns the newest questionnaires of a user ("my cases").
func (s *QuestionnaireService) ForUser(ctx context.Context, telegramID int64, limit int) ([]domain.CaseQuestionnaire, error) {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return repo.ListQuestionnairesPage(ctx, s.DB, repo.QuestionnaireFilter{UserID: u.ID}, 0, limit)
}

// List returns a page of questionnaires, optionally filtered by status.
func (s *QuestionnaireService) List(ctx context.Context, status string, page, pageSize int) ([]domain.CaseQuestionnaire, int64, error) {
	ctx, span := otel.Tracer("services/QuestionnaireService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("status", status),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		))
	defer span.End()

	if status != "" && !domain.ValidQuestionnaireStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	f := repo.QuestionnaireFilter{Status: status}
	total, err := repo.CountQuestionnaires(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.CaseQuestionnaire{}, 0, nil
	}
	offset, limit := pageWindow(page, pageSize)
	items, err := repo.ListQuestionnairesPage(ctx, s.DB, f, offset, limit)
	return items, total, err
}

// Get returns a questionnaire with its documents.
func (s *QuestionnaireService) Get(ctx context.Context, id uint) (*domain.CaseQuestionnaire, error) {
	q, err := repo.GetQuestionnaire(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCaseNotFound
	}
	return q, err
}

// UpdateStatus moves a questionnaire to status to. Allowed transitions are
// new -> in_progress|rejected and in_progress -> completed|rejected. The
// client is told about the change on a best-effort basis.
func (s *QuestionnaireService) UpdateStatus(ctx context.Context, id uint, to string) (*domain.CaseQuestionnaire, error) {
	ctx, span := otel.Tracer("services/QuestionnaireService").Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("case.id", int64(id)),
			attribute.String("status.to", to),
		))
	defer span.End()

	if !domain.ValidQuestionnaireStatus(to) {
		return nil, ErrInvalidStatus
	}
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(q.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, q.Status, to)
	}
	if err := repo.UpdateQuestionnaireStatus(ctx, s.DB, id, q.Status, to); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Status changed underneath us.
			return nil, fmt.Errorf("%w: %s is stale", ErrInvalidStatusTransition, q.Status)
		}
		return nil, err
	}
	q.Status = to

	if u, uerr := repo.GetUser(ctx, s.DB, q.UserID); uerr == nil {
		notify.Deliver(ctx, s.Notifier, u.TelegramID,
			fmt.Sprintf("📋 Your case #%d is now: <b>%s</b>", q.ID, StatusLabels[to]))
	}
	return q, nil
}

// Search ranks the newest cases, optionally filtered by status, by word
// overlap between query and each of their answers.
func (s *QuestionnaireService) Search(ctx context.Context, query, status string, limit int) ([]CaseHit, error) {
	ctx, span := otel.Tracer("services/QuestionnaireService").Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("status", status),
			attribute.Int("limit", limit),
		))
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if status != "" && !domain.ValidQuestionnaireStatus(status) {
		return nil, ErrInvalidStatus
	}
	items, err := repo.ListQuestionnairesPage(ctx, s.DB, repo.QuestionnaireFilter{Status: status}, 0, searchScanLimit)
	if err != nil {
		return nil, err
	}

	docs := make([]search.Doc, len(items))
	byID := make(map[uint]domain.CaseQuestionnaire, len(items))
	for i, q := range items {
		sec := q.Sections()
		docs[i] = search.Doc{ID: q.ID, Passages: sec[:]}
		byID[q.ID] = q
	}
	hits := search.New(docs).TopK(query, limit)

	out := make([]CaseHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, CaseHit{Case: byID[h.ID], Snippet: h.Snippet, Score: h.Score})
	}
	span.SetAttributes(attribute.Int("hits", len(out)))
	return out, nil
}
