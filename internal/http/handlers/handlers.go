// Package handlers provides HTTP handler implementations for the admin API.
//
// Handlers are transport-thin: they validate input, call application services
// through the interfaces declared below, and translate results into HTTP
// responses (including conditional and replayed responses).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/utils"
)

//
// Service contracts (context-aware)
//

// AdminService answers read-only back-office queries.
type AdminService interface {
	Partners(ctx context.Context) ([]domain.User, error)
	Users(ctx context.Context, search string, page, pageSize int) ([]domain.User, int64, error)
	UsersWithReferrals(ctx context.Context, search string, page, pageSize int) ([]services.UserReferralInfo, int64, error)
	Referrers(ctx context.Context) ([]repo.ReferrerRow, error)
	ReferralStructure(ctx context.Context) ([]services.ReferralNode, error)
	ReferrerOf(ctx context.Context, telegramID int64) (*domain.User, error)
	Stats(ctx context.Context) (*services.Stats, error)
}

// RevenueService records and lists partner revenue.
type RevenueService interface {
	Record(ctx context.Context, in services.RevenueInput) (*domain.PartnerRevenue, error)
	Get(ctx context.Context, id uint) (*domain.PartnerRevenue, error)
	List(ctx context.Context, partnerID uint, page, pageSize int) ([]repo.RevenueRow, int64, error)
}

// PayoutService manages referral payouts.
type PayoutService interface {
	List(ctx context.Context, f repo.PayoutFilter, page, pageSize int) ([]repo.PayoutRow, int64, error)
	Count(ctx context.Context, f repo.PayoutFilter) (int64, error)
	Get(ctx context.Context, id uint) (*domain.ReferralPayout, error)
	Create(ctx context.Context, in services.PayoutInput) (*domain.ReferralPayout, error)
	Update(ctx context.Context, id uint, patch services.PayoutPatch) (*domain.ReferralPayout, error)
	MarkPaid(ctx context.Context, id uint) (*domain.ReferralPayout, error)
	BatchMarkPaid(ctx context.Context, ids []uint) (int64, error)
	Generate(ctx context.Context, year, month int) (*services.GenerateResult, error)
}

// CaseService exposes submitted questionnaires to staff.
type CaseService interface {
	List(ctx context.Context, status string, page, pageSize int) ([]domain.CaseQuestionnaire, int64, error)
	Get(ctx context.Context, id uint) (*domain.CaseQuestionnaire, error)
	UpdateStatus(ctx context.Context, id uint, to string) (*domain.CaseQuestionnaire, error)
	Search(ctx context.Context, query, status string, limit int) ([]services.CaseHit, error)
}

// MessagingService relays messages between staff and clients.
type MessagingService interface {
	PostClientMessage(ctx context.Context, in services.ClientMessage) (*domain.CaseMessage, error)
	PostStaffMessage(ctx context.Context, in services.StaffMessage) (*domain.CaseMessage, bool, error)
	Thread(ctx context.Context, telegramID int64, page, pageSize int) ([]domain.CaseMessage, int64, error)
	CaseThread(ctx context.Context, caseID uint) ([]domain.CaseMessage, error)
	Dialogs(ctx context.Context) ([]repo.DialogRow, error)
	Broadcast(ctx context.Context, text string, telegramIDs []int64) (services.BroadcastResult, error)
	Notify(ctx context.Context, telegramID int64, text string) (bool, error)
}

// IdempotencyStore remembers which resource a keyed POST created.
type IdempotencyStore interface {
	Get(ctx context.Context, actor, scope, key string, now time.Time) (*domain.Idempotency, error)
	Create(ctx context.Context, actor, scope, key string, resourceID uint, status int, ttl time.Duration) error
}

//
// Handler wiring
//

// Deps bundles everything the handlers need. Idempotency and DialogsStamp
// are optional.
type Deps struct {
	Admin    AdminService
	Revenue  RevenueService
	Payouts  PayoutService
	Cases    CaseService
	Messages MessagingService

	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration

	// DialogsStamp returns an opaque fingerprint of the message table used
	// as a weak ETag for the dialog list.
	DialogsStamp func(ctx context.Context) (string, error)
}

// Handlers groups the admin API endpoints.
type Handlers struct {
	admin    AdminService
	revenue  RevenueService
	payouts  PayoutService
	cases    CaseService
	messages MessagingService

	idem    IdempotencyStore
	idemTTL time.Duration
	stamp   func(ctx context.Context) (string, error)
}

// New constructs a Handlers instance bound to the given dependencies.
func New(d Deps) *Handlers {
	ttl := d.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handlers{
		admin:    d.Admin,
		revenue:  d.Revenue,
		payouts:  d.Payouts,
		cases:    d.Cases,
		messages: d.Messages,
		idem:     d.Idempotency,
		idemTTL:  ttl,
		stamp:    d.DialogsStamp,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// pathID reads a positive numeric path parameter, failing the request with
// 400 when it is malformed.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, good := utils.ParseID(c.Param(name))
	if !good {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
	}
	return id, good
}

// pathTelegramID reads a Telegram id path parameter.
func pathTelegramID(c *gin.Context) (int64, bool) {
	id, good := utils.ParseTelegramID(c.Param("telegram_id"))
	if !good {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "telegram_id must be a non-zero integer")
	}
	return id, good
}
