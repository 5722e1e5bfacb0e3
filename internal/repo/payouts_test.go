package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
)

func mustPayout(t *testing.T, db *gorm.DB, referrerID uint, amount int64, month, year int, status string) *domain.ReferralPayout {
	t.Helper()
	p := &domain.ReferralPayout{ReferrerID: referrerID, Amount: amount, Month: month, Year: year, Status: status}
	if err := CreatePayout(context.Background(), db, p); err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	return p
}

func TestMarkPayoutsPaid_OnlyPending(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	a := mustUser(t, db, 1, "Ann", "ann")

	p1 := mustPayout(t, db, a.ID, 100, 1, 2025, domain.PayoutPending)
	p2 := mustPayout(t, db, a.ID, 200, 2, 2025, domain.PayoutPending)
	p3 := mustPayout(t, db, a.ID, 300, 3, 2025, domain.PayoutCancelled)
	earlier := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	if _, err := MarkPayoutsPaid(ctx, db, []uint{p2.ID}, earlier); err != nil {
		t.Fatalf("MarkPayoutsPaid: %v", err)
	}

	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	n, err := MarkPayoutsPaid(ctx, db, []uint{p1.ID, p2.ID, p3.ID, 9999}, now)
	if err != nil {
		t.Fatalf("MarkPayoutsPaid: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row changed, got %d", n)
	}
	got, _ := GetPayouts(ctx, db, []uint{p1.ID, p2.ID, p3.ID})
	if got[0].Status != domain.PayoutPaid || got[0].PaidAt == nil || !got[0].PaidAt.Equal(now) {
		t.Fatalf("p1 not paid at now: %+v", got[0])
	}
	if got[1].PaidAt == nil || !got[1].PaidAt.Equal(earlier) {
		t.Fatalf("p2 paid_at overwritten: %+v", got[1])
	}
	if got[2].Status != domain.PayoutCancelled || got[2].PaidAt != nil {
		t.Fatalf("cancelled payout touched: %+v", got[2])
	}
}

func TestPayoutExists_IgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	a := mustUser(t, db, 1, "Ann", "ann")
	mustPayout(t, db, a.ID, 100, 5, 2025, domain.PayoutCancelled)

	ok, err := PayoutExists(ctx, db, a.ID, 2025, 5)
	if err != nil || ok {
		t.Fatalf("cancelled payout counted: %v, %v", ok, err)
	}
	mustPayout(t, db, a.ID, 100, 5, 2025, domain.PayoutPending)
	if ok, _ := PayoutExists(ctx, db, a.ID, 2025, 5); !ok {
		t.Fatalf("expected pending payout to exist")
	}
}

func TestListPayoutRows_Filters(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	a := mustUser(t, db, 1, "Ann", "ann")
	b := mustUser(t, db, 2, "Bob", "bobby")
	mustPayout(t, db, a.ID, 100, 1, 2025, domain.PayoutPending)
	mustPayout(t, db, b.ID, 300, 1, 2025, domain.PayoutPaid)
	mustPayout(t, db, b.ID, 50, 2, 2025, domain.PayoutPending)

	n, err := CountPayouts(ctx, db, PayoutFilter{Status: domain.PayoutPending})
	if err != nil || n != 2 {
		t.Fatalf("CountPayouts(pending) = %d, %v", n, err)
	}
	rows, err := ListPayoutRows(ctx, db, PayoutFilter{Month: 1, Year: 2025, Search: "BOB"}, 0, 10)
	if err != nil {
		t.Fatalf("ListPayoutRows: %v", err)
	}
	if len(rows) != 1 || rows[0].Amount != 300 || rows[0].ReferrerTelegramID != 2 || rows[0].ReferrerName != "Bob" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	sums, err := SumPayoutsByStatus(ctx, db)
	if err != nil || sums[domain.PayoutPending] != 150 || sums[domain.PayoutPaid] != 300 {
		t.Fatalf("SumPayoutsByStatus = %v, %v", sums, err)
	}
}

func TestUpdatePayoutFields_NotFound(t *testing.T) {
	db := newRepoDB(t)
	err := UpdatePayoutFields(context.Background(), db, 42, map[string]any{"amount": 10})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPayoutCheckConstraints(t *testing.T) {
	db := newRepoDB(t)
	a := mustUser(t, db, 1, "Ann", "ann")
	bad := &domain.ReferralPayout{ReferrerID: a.ID, Amount: 10, Month: 13, Year: 2025, Status: domain.PayoutPending}
	if err := CreatePayout(context.Background(), db, bad); err == nil {
		t.Fatalf("expected check violation for month 13")
	}
}
