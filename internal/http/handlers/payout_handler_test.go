package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

func payoutEngine(svc stubPayouts, idem IdempotencyStore) http.Handler {
	r := newEngine(false)
	h := New(Deps{Payouts: svc, Idempotency: idem})
	r.GET("/payouts", h.ListPayouts)
	r.GET("/payouts/count", h.CountPayouts)
	r.POST("/payouts", h.CreatePayout)
	r.POST("/payouts/generate", h.GeneratePayouts)
	r.PUT("/payouts/batch/pay", h.BatchMarkPaid)
	r.PUT("/payouts/:id", h.UpdatePayout)
	r.PUT("/payouts/:id/pay", h.MarkPayoutPaid)
	return r
}

func TestListPayouts_Filters(t *testing.T) {
	var got repo.PayoutFilter
	svc := stubPayouts{
		list: func(_ context.Context, f repo.PayoutFilter, page, pageSize int) ([]repo.PayoutRow, int64, error) {
			got = f
			return []repo.PayoutRow{{ID: 1, Status: domain.PayoutPending}}, 1, nil
		},
		count: func(_ context.Context, f repo.PayoutFilter) (int64, error) {
			got = f
			return 4, nil
		},
	}
	r := payoutEngine(svc, nil)

	w := do(r, http.MethodGet, "/payouts?status=pending&month=9&year=2026&referrer_id=3&search=%20Ann%20", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	want := repo.PayoutFilter{Status: "pending", Month: 9, Year: 2026, ReferrerID: 3, Search: "Ann"}
	if got != want {
		t.Fatalf("filter=%+v want %+v", got, want)
	}

	w = do(r, http.MethodGet, "/payouts/count?status=paid", "", nil)
	var cnt CountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &cnt); err != nil || cnt.Count != 4 {
		t.Fatalf("count body=%s", w.Body.String())
	}
	if got.Status != "paid" {
		t.Fatalf("count filter=%+v", got)
	}

	if w := do(r, http.MethodGet, "/payouts?referrer_id=zero", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad referrer_id: %d", w.Code)
	}
}

func TestCreatePayout(t *testing.T) {
	created := map[uint]*domain.ReferralPayout{}
	var calls int
	svc := stubPayouts{
		create: func(_ context.Context, in services.PayoutInput) (*domain.ReferralPayout, error) {
			calls++
			if in.Month < 1 || in.Month > 12 {
				return nil, services.ErrInvalidPayout
			}
			p := &domain.ReferralPayout{ID: uint(calls), ReferrerID: in.ReferrerID, Amount: in.Amount,
				Month: in.Month, Year: in.Year, Status: domain.PayoutPending}
			created[p.ID] = p
			return p, nil
		},
		get: func(_ context.Context, id uint) (*domain.ReferralPayout, error) {
			if p, ok := created[id]; ok {
				return p, nil
			}
			return nil, services.ErrPayoutNotFound
		},
	}
	r := payoutEngine(svc, newMemIdem())
	body := `{"referrer_id":3,"amount":2500,"month":9,"year":2026}`
	key := map[string]string{"Idempotency-Key": "p-2026-09-3"}

	w := do(r, http.MethodPost, "/payouts", body, key)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/payouts", body, key)
	if w.Code != http.StatusCreated || w.Header().Get(HeaderReplayed) != "true" || calls != 1 {
		t.Fatalf("replay: %d %q calls=%d", w.Code, w.Header().Get(HeaderReplayed), calls)
	}

	if w := do(r, http.MethodPost, "/payouts", `{"referrer_id":3,"amount":1,"month":13,"year":2026}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad month: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/payouts", `{"amount":1}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", w.Code)
	}
}

func TestMarkPayoutPaid(t *testing.T) {
	paidAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc := stubPayouts{
		markPaid: func(_ context.Context, id uint) (*domain.ReferralPayout, error) {
			switch id {
			case 1:
				return &domain.ReferralPayout{ID: 1, Status: domain.PayoutPaid, PaidAt: &paidAt}, nil
			case 2:
				return nil, services.ErrPayoutAlreadyPaid
			case 3:
				return nil, services.ErrPayoutCancelled
			}
			return nil, services.ErrPayoutNotFound
		},
	}
	r := payoutEngine(svc, nil)

	cases := map[string]int{
		"/payouts/1/pay": http.StatusOK,
		"/payouts/2/pay": http.StatusConflict,
		"/payouts/3/pay": http.StatusConflict,
		"/payouts/4/pay": http.StatusNotFound,
		"/payouts/x/pay": http.StatusBadRequest,
		"/payouts/0/pay": http.StatusBadRequest,
	}
	for path, want := range cases {
		if w := do(r, http.MethodPut, path, "", nil); w.Code != want {
			t.Fatalf("%s: status=%d want %d", path, w.Code, want)
		}
	}
}

func TestUpdatePayout_PartialPatch(t *testing.T) {
	var got services.PayoutPatch
	svc := stubPayouts{
		update: func(_ context.Context, id uint, p services.PayoutPatch) (*domain.ReferralPayout, error) {
			got = p
			return &domain.ReferralPayout{ID: id, Status: domain.PayoutCancelled}, nil
		},
	}
	r := payoutEngine(svc, nil)

	w := do(r, http.MethodPut, "/payouts/5", `{"status":"cancelled"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got.Status == nil || *got.Status != "cancelled" || got.Amount != nil || got.Month != nil || got.Year != nil {
		t.Fatalf("patch=%+v", got)
	}

	w = do(r, http.MethodPut, "/payouts/5", `{"amount":0,"month":2}`, nil)
	if w.Code != http.StatusOK || got.Amount == nil || *got.Amount != 0 || got.Month == nil || *got.Month != 2 || got.Status != nil {
		t.Fatalf("zero amount must be sent: %+v", got)
	}
}

func TestBatchMarkPaid(t *testing.T) {
	var got []uint
	svc := stubPayouts{
		batch: func(_ context.Context, ids []uint) (int64, error) {
			got = ids
			if len(ids) == 0 {
				return 0, services.ErrEmptyBatch
			}
			if ids[len(ids)-1] == 9999 {
				return 0, &services.MissingPayoutsError{IDs: []uint{9999}}
			}
			return 2, nil
		},
	}
	r := payoutEngine(svc, nil)

	w := do(r, http.MethodPut, "/payouts/batch/pay", `{"payout_ids":[1,2,3]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp BatchPayResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Updated != 2 || !reflect.DeepEqual(got, []uint{1, 2, 3}) {
		t.Fatalf("resp=%+v ids=%v", resp, got)
	}

	if w := do(r, http.MethodPut, "/payouts/batch/pay", `{"payout_ids":[]}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("empty: %d", w.Code)
	}
	w = do(r, http.MethodPut, "/payouts/batch/pay", `{"payout_ids":[1,9999]}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: %d", w.Code)
	}
	if er := decodeErr(t, w); er.Message != "payout not found: 9999" {
		t.Fatalf("message=%q", er.Message)
	}
}

func TestGeneratePayouts(t *testing.T) {
	var gotY, gotM int
	svc := stubPayouts{
		generate: func(_ context.Context, y, m int) (*services.GenerateResult, error) {
			gotY, gotM = y, m
			if m < 1 || m > 12 {
				return nil, services.ErrInvalidPeriod
			}
			return &services.GenerateResult{Year: y, Month: m, Created: []domain.ReferralPayout{}}, nil
		},
	}
	r := payoutEngine(svc, nil)

	if w := do(r, http.MethodPost, "/payouts/generate", `{"year":2026,"month":9}`, nil); w.Code != http.StatusOK || gotY != 2026 || gotM != 9 {
		t.Fatalf("explicit: %d %d-%d", w.Code, gotY, gotM)
	}
	if w := do(r, http.MethodPost, "/payouts/generate", "", nil); w.Code != http.StatusOK {
		t.Fatalf("default period: %d", w.Code)
	}
	wy, wm := previousMonth(time.Now().UTC())
	if gotY != wy || gotM != wm {
		t.Fatalf("default period = %d-%d want %d-%d", gotY, gotM, wy, wm)
	}
	if w := do(r, http.MethodPost, "/payouts/generate", `{"year":2026,"month":13}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad month: %d", w.Code)
	}
}

func TestPreviousMonth(t *testing.T) {
	cases := []struct {
		now  time.Time
		y, m int
	}{
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 2025, 12},
		{time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC), 2026, 2},
		{time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 2026, 9},
	}
	for _, tc := range cases {
		y, m := previousMonth(tc.now)
		if y != tc.y || m != tc.m {
			t.Fatalf("%v: got %d-%d want %d-%d", tc.now, y, m, tc.y, tc.m)
		}
	}
}
