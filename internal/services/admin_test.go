package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
)

func TestAdminService_ReferralsAndStats(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	ann := seedUser(t, db, 100, "Ann")
	bob := seedUser(t, db, 200, "Bob")
	cid := seedUser(t, db, 300, "Cid")
	seedProfile(t, db, ann.ID, "Ann A")

	for _, e := range [][2]uint{{ann.ID, bob.ID}, {ann.ID, cid.ID}} {
		if _, err := repo.CreateRelationship(ctx, db, e[0], e[1]); err != nil {
			t.Fatalf("CreateRelationship: %v", err)
		}
	}
	if _, err := repo.CreateReferralLink(ctx, db, ann.ID, "ANNCODE1"); err != nil {
		t.Fatalf("CreateReferralLink: %v", err)
	}
	_ = repo.CreateRevenue(ctx, db, &domain.PartnerRevenue{PartnerID: bob.ID, Amount: 700})
	_ = repo.CreatePayout(ctx, db, &domain.ReferralPayout{ReferrerID: ann.ID, Amount: 40, Month: 1, Year: 2025, Status: domain.PayoutPending})
	_ = repo.CreateMessage(ctx, db, &domain.CaseMessage{UserID: bob.ID, SenderID: "200", SenderKind: domain.SenderClient, Content: "hi"})

	s := &AdminService{DB: db}

	tree, err := s.ReferralStructure(ctx)
	if err != nil || len(tree) != 1 || tree[0].ReferrerID != ann.ID || len(tree[0].Referred) != 2 {
		t.Fatalf("ReferralStructure = %+v, %v", tree, err)
	}

	ref, err := s.ReferrerOf(ctx, 200)
	if err != nil || ref.ID != ann.ID {
		t.Fatalf("ReferrerOf(200) = %+v, %v", ref, err)
	}
	if _, err := s.ReferrerOf(ctx, 100); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ann has no referrer: expected ErrUserNotFound, got %v", err)
	}

	infos, total, err := s.UsersWithReferrals(ctx, "", 1, 10)
	if err != nil || total != 3 {
		t.Fatalf("UsersWithReferrals: total %d, %v", total, err)
	}
	byTG := map[int64]UserReferralInfo{}
	for _, i := range infos {
		byTG[i.TelegramID] = i
	}
	if a := byTG[100]; a.ReferralCount != 2 || a.ReferralCode != "ANNCODE1" || a.ReferrerID != nil {
		t.Fatalf("ann info: %+v", a)
	}
	if b := byTG[200]; b.ReferrerID == nil || *b.ReferrerID != ann.ID || b.ReferrerName != "Ann" {
		t.Fatalf("bob info: %+v", b)
	}

	partners, err := s.Partners(ctx)
	if err != nil || len(partners) != 1 || partners[0].ID != ann.ID {
		t.Fatalf("Partners = %+v, %v", partners, err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Users != 3 || st.Partners != 1 || st.Referrals != 2 || st.Cases != 0 ||
		st.UnreadMessages != 1 || st.RevenueTotal != 700 || st.PayoutsPending != 40 || st.PayoutsPaid != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if len(st.CasesByStatus) != 4 {
		t.Fatalf("CasesByStatus should list every status: %+v", st.CasesByStatus)
	}
}

func TestAdminService_UsersSearch(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, 100, "Ann")
	seedUser(t, db, 200, "Bob")
	s := &AdminService{DB: db}

	items, total, err := s.Users(context.Background(), "bo", 1, 10)
	if err != nil || total != 1 || len(items) != 1 || items[0].TelegramID != 200 {
		t.Fatalf("Users(bo) = %+v, total %d, %v", items, total, err)
	}
	items, total, _ = s.Users(context.Background(), "zzz", 1, 10)
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty page, got %d", len(items))
	}
}

func TestMissingPayoutsError(t *testing.T) {
	err := error(&MissingPayoutsError{IDs: []uint{3, 7}})
	if !errors.Is(err, ErrPayoutNotFound) {
		t.Fatalf("MissingPayoutsError should match ErrPayoutNotFound")
	}
	if got := err.Error(); got != "payout not found: 3, 7" {
		t.Fatalf("Error() = %q", got)
	}
}
