package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// AdminService answers the read-only back-office queries that do not belong
// to a more specific service.
type AdminService struct {
	DB *gorm.DB
}

func (s *AdminService) tracer() trace.Tracer { return otel.Tracer("services/AdminService") }

// Partners returns every user with a partner profile.
func (s *AdminService) Partners(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.tracer().Start(ctx, "Partners")
	defer span.End()
	return repo.ListPartners(ctx, s.DB)
}

// Users returns a page of users matching search.
func (s *AdminService) Users(ctx context.Context, search string, page, pageSize int) ([]domain.User, int64, error) {
	ctx, span := s.tracer().Start(ctx, "Users")
	defer span.End()

	f := repo.UserFilter{Search: search}
	total, err := repo.CountUsers(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}
	offset, limit := pageWindow(page, pageSize)
	items, err := repo.ListUsersPage(ctx, s.DB, f, offset, limit)
	return items, total, err
}

// UserReferralInfo is a user with their referral position.
type UserReferralInfo struct {
	domain.User
	ReferrerID    *uint  `json:"referrer_id,omitempty"`
	ReferrerName  string `json:"referrer_name,omitempty"`
	ReferralCount int64  `json:"referral_count"`
	ReferralCode  string `json:"referral_code,omitempty"`
}

// UsersWithReferrals returns a page of users with who referred them and how
// many users they referred.
func (s *AdminService) UsersWithReferrals(ctx context.Context, search string, page, pageSize int) ([]UserReferralInfo, int64, error) {
	ctx, span := s.tracer().Start(ctx, "UsersWithReferrals")
	defer span.End()

	users, total, err := s.Users(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserReferralInfo, 0, len(users))
	for _, u := range users {
		info := UserReferralInfo{User: u}
		if rel, err := repo.GetRelationshipByReferred(ctx, s.DB, u.ID); err == nil {
			rid := rel.ReferrerID
			info.ReferrerID = &rid
			if ref, err := repo.GetUser(ctx, s.DB, rid); err == nil {
				info.ReferrerName = ref.DisplayName()
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, 0, err
		}
		if info.ReferralCount, err = repo.CountReferred(ctx, s.DB, u.ID); err != nil {
			return nil, 0, err
		}
		if l, err := repo.GetReferralLinkByPartner(ctx, s.DB, u.ID); err == nil {
			info.ReferralCode = l.Code
		}
		out = append(out, info)
	}
	return out, total, nil
}

// Referrers returns users with at least one referral and their counts.
func (s *AdminService) Referrers(ctx context.Context) ([]repo.ReferrerRow, error) {
	ctx, span := s.tracer().Start(ctx, "Referrers")
	defer span.End()
	return repo.ListReferrers(ctx, s.DB)
}

// ReferralNode is one referrer with the users they referred.
type ReferralNode struct {
	ReferrerID         uint           `json:"referrer_id"`
	ReferrerTelegramID int64          `json:"referrer_telegram_id"`
	ReferrerName       string         `json:"referrer_name"`
	Referred           []ReferredLeaf `json:"referred"`
}

// ReferredLeaf is one referred user in the referral structure.
type ReferredLeaf struct {
	UserID     uint   `json:"user_id"`
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
}

// ReferralStructure groups every referral edge by referrer.
func (s *AdminService) ReferralStructure(ctx context.Context) ([]ReferralNode, error) {
	ctx, span := s.tracer().Start(ctx, "ReferralStructure")
	defer span.End()

	edges, err := repo.ListEdges(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := []ReferralNode{}
	for _, e := range edges {
		if n := len(out); n == 0 || out[n-1].ReferrerID != e.ReferrerID {
			out = append(out, ReferralNode{
				ReferrerID:         e.ReferrerID,
				ReferrerTelegramID: e.ReferrerTelegramID,
				ReferrerName:       e.ReferrerName,
			})
		}
		last := &out[len(out)-1]
		last.Referred = append(last.Referred, ReferredLeaf{UserID: e.ReferredID, TelegramID: e.ReferredTelegramID, Name: e.ReferredName})
	}
	return out, nil
}

// ReferrerOf returns the user who referred the user with telegramID, or
// ErrUserNotFound when that user or their referrer does not exist.
func (s *AdminService) ReferrerOf(ctx context.Context, telegramID int64) (*domain.User, error) {
	ctx, span := s.tracer().Start(ctx, "ReferrerOf")
	defer span.End()

	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	rel, err := repo.GetRelationshipByReferred(ctx, s.DB, u.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return repo.GetUser(ctx, s.DB, rel.ReferrerID)
}

// Stats is the back-office dashboard.
type Stats struct {
	Users          int64            `json:"users"`
	Partners       int64            `json:"partners"`
	Referrals      int64            `json:"referrals"`
	Cases          int64            `json:"cases"`
	CasesByStatus  map[string]int64 `json:"cases_by_status"`
	UnreadMessages int64            `json:"unread_messages"`
	RevenueTotal   int64            `json:"revenue_total"`
	PayoutsPending int64            `json:"payouts_pending"`
	PayoutsPaid    int64            `json:"payouts_paid"`
}

// Stats aggregates the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := s.tracer().Start(ctx, "Stats")
	defer span.End()

	var (
		st  = &Stats{CasesByStatus: map[string]int64{}}
		err error
	)
	if st.Users, err = repo.CountUsers(ctx, s.DB, repo.UserFilter{}); err != nil {
		return nil, err
	}
	if st.Partners, err = repo.CountProfiles(ctx, s.DB); err != nil {
		return nil, err
	}
	if st.Referrals, err = repo.CountRelationships(ctx, s.DB); err != nil {
		return nil, err
	}
	byStatus, err := repo.CountQuestionnairesByStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	for _, status := range []string{domain.StatusNew, domain.StatusInProgress, domain.StatusCompleted, domain.StatusRejected} {
		st.CasesByStatus[status] = 0
	}
	for _, c := range byStatus {
		st.CasesByStatus[c.Status] = c.Count
		st.Cases += c.Count
	}
	if st.UnreadMessages, err = repo.CountUnread(ctx, s.DB); err != nil {
		return nil, err
	}
	if st.RevenueTotal, err = repo.SumRevenue(ctx, s.DB); err != nil {
		return nil, err
	}
	sums, err := repo.SumPayoutsByStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	st.PayoutsPending = sums[domain.PayoutPending]
	st.PayoutsPaid = sums[domain.PayoutPaid]
	return st, nil
}
