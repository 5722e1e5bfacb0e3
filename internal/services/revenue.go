package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RevenueInput is one ledger entry to record. The partner is identified by
// PartnerID or, when zero, by TelegramID.
type RevenueInput struct {
	PartnerID       uint
	TelegramID      int64
	Amount          int64
	Description     string
	ClientReference string
}

// RevenueService records and lists partner revenue.
type RevenueService struct {
	DB *gorm.DB
}

// Record appends a ledger entry.
func (s *RevenueService) Record(ctx context.Context, in RevenueInput) (*domain.PartnerRevenue, error) {
	ctx, span := otel.Tracer("services/RevenueService").Start(ctx, "Record",
		trace.WithAttributes(
			attribute.Int64("partner.id", int64(in.PartnerID)),
			attribute.Int64("revenue.amount", in.Amount),
		))
	defer span.End()

	if in.Amount <= 0 {
		return nil, ErrInvalidRevenue
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = forms.DefaultRevenueDescription
	}

	var u *domain.User
	var err error
	if in.PartnerID != 0 {
		u, err = repo.GetUser(ctx, s.DB, in.PartnerID)
	} else {
		u, err = repo.GetUserByTelegramID(ctx, s.DB, in.TelegramID)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	r := &domain.PartnerRevenue{PartnerID: u.ID, Amount: in.Amount, Description: desc}
	if ref := strings.TrimSpace(in.ClientReference); ref != "" {
		r.ClientReference = &ref
	}
	if err := repo.CreateRevenue(ctx, s.DB, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns one ledger entry joined with partner data.
func (s *RevenueService) Get(ctx context.Context, id uint) (*domain.PartnerRevenue, error) {
	r, err := repo.GetRevenue(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRevenueNotFound
	}
	return r, err
}

// List returns a page of ledger entries, optionally for one partner
// (partnerID 0 = all).
func (s *RevenueService) List(ctx context.Context, partnerID uint, page, pageSize int) ([]repo.RevenueRow, int64, error) {
	ctx, span := otel.Tracer("services/RevenueService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int64("partner.id", int64(partnerID)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		))
	defer span.End()

	if partnerID != 0 {
		if _, err := repo.GetUser(ctx, s.DB, partnerID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, 0, ErrUserNotFound
			}
			return nil, 0, err
		}
	}
	offset, limit := pageWindow(page, pageSize)
	total, err := repo.CountRevenues(ctx, s.DB, partnerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []repo.RevenueRow{}, 0, nil
	}
	rows, err := repo.ListRevenueRows(ctx, s.DB, partnerID, offset, limit)
	return rows, total, err
}

// pageWindow turns 1-based page numbers into offset/limit.
func pageWindow(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
