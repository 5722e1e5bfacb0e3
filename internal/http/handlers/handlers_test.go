package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/http/middleware"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

// ---------- stubs ----------

type stubAdmin struct {
	partners  func(ctx context.Context) ([]domain.User, error)
	users     func(ctx context.Context, search string, page, pageSize int) ([]domain.User, int64, error)
	withRefs  func(ctx context.Context, search string, page, pageSize int) ([]services.UserReferralInfo, int64, error)
	referrers func(ctx context.Context) ([]repo.ReferrerRow, error)
	structure func(ctx context.Context) ([]services.ReferralNode, error)
	referrer  func(ctx context.Context, telegramID int64) (*domain.User, error)
	stats     func(ctx context.Context) (*services.Stats, error)
}

func (s stubAdmin) Partners(ctx context.Context) ([]domain.User, error) { return s.partners(ctx) }
func (s stubAdmin) Users(ctx context.Context, q string, p, ps int) ([]domain.User, int64, error) {
	return s.users(ctx, q, p, ps)
}
func (s stubAdmin) UsersWithReferrals(ctx context.Context, q string, p, ps int) ([]services.UserReferralInfo, int64, error) {
	return s.withRefs(ctx, q, p, ps)
}
func (s stubAdmin) Referrers(ctx context.Context) ([]repo.ReferrerRow, error) { return s.referrers(ctx) }
func (s stubAdmin) ReferralStructure(ctx context.Context) ([]services.ReferralNode, error) {
	return s.structure(ctx)
}
func (s stubAdmin) ReferrerOf(ctx context.Context, id int64) (*domain.User, error) {
	return s.referrer(ctx, id)
}
func (s stubAdmin) Stats(ctx context.Context) (*services.Stats, error) { return s.stats(ctx) }

type stubRevenue struct {
	record func(ctx context.Context, in services.RevenueInput) (*domain.PartnerRevenue, error)
	get    func(ctx context.Context, id uint) (*domain.PartnerRevenue, error)
	list   func(ctx context.Context, partnerID uint, page, pageSize int) ([]repo.RevenueRow, int64, error)
}

func (s stubRevenue) Record(ctx context.Context, in services.RevenueInput) (*domain.PartnerRevenue, error) {
	return s.record(ctx, in)
}
func (s stubRevenue) Get(ctx context.Context, id uint) (*domain.PartnerRevenue, error) {
	return s.get(ctx, id)
}
func (s stubRevenue) List(ctx context.Context, partnerID uint, p, ps int) ([]repo.RevenueRow, int64, error) {
	return s.list(ctx, partnerID, p, ps)
}

type stubPayouts struct {
	list     func(ctx context.Context, f repo.PayoutFilter, page, pageSize int) ([]repo.PayoutRow, int64, error)
	count    func(ctx context.Context, f repo.PayoutFilter) (int64, error)
	get      func(ctx context.Context, id uint) (*domain.ReferralPayout, error)
	create   func(ctx context.Context, in services.PayoutInput) (*domain.ReferralPayout, error)
	update   func(ctx context.Context, id uint, patch services.PayoutPatch) (*domain.ReferralPayout, error)
	markPaid func(ctx context.Context, id uint) (*domain.ReferralPayout, error)
	batch    func(ctx context.Context, ids []uint) (int64, error)
	generate func(ctx context.Context, year, month int) (*services.GenerateResult, error)
}

func (s stubPayouts) List(ctx context.Context, f repo.PayoutFilter, p, ps int) ([]repo.PayoutRow, int64, error) {
	return s.list(ctx, f, p, ps)
}
func (s stubPayouts) Count(ctx context.Context, f repo.PayoutFilter) (int64, error) {
	return s.count(ctx, f)
}
func (s stubPayouts) Get(ctx context.Context, id uint) (*domain.ReferralPayout, error) {
	return s.get(ctx, id)
}
func (s stubPayouts) Create(ctx context.Context, in services.PayoutInput) (*domain.ReferralPayout, error) {
	return s.create(ctx, in)
}
func (s stubPayouts) Update(ctx context.Context, id uint, p services.PayoutPatch) (*domain.ReferralPayout, error) {
	return s.update(ctx, id, p)
}
func (s stubPayouts) MarkPaid(ctx context.Context, id uint) (*domain.ReferralPayout, error) {
	return s.markPaid(ctx, id)
}
func (s stubPayouts) BatchMarkPaid(ctx context.Context, ids []uint) (int64, error) {
	return s.batch(ctx, ids)
}
func (s stubPayouts) Generate(ctx context.Context, y, m int) (*services.GenerateResult, error) {
	return s.generate(ctx, y, m)
}

type stubCases struct {
	list   func(ctx context.Context, status string, page, pageSize int) ([]domain.CaseQuestionnaire, int64, error)
	get    func(ctx context.Context, id uint) (*domain.CaseQuestionnaire, error)
	update func(ctx context.Context, id uint, to string) (*domain.CaseQuestionnaire, error)
	search func(ctx context.Context, query, status string, limit int) ([]services.CaseHit, error)
}

func (s stubCases) List(ctx context.Context, st string, p, ps int) ([]domain.CaseQuestionnaire, int64, error) {
	return s.list(ctx, st, p, ps)
}
func (s stubCases) Get(ctx context.Context, id uint) (*domain.CaseQuestionnaire, error) {
	return s.get(ctx, id)
}
func (s stubCases) UpdateStatus(ctx context.Context, id uint, to string) (*domain.CaseQuestionnaire, error) {
	return s.update(ctx, id, to)
}
func (s stubCases) Search(ctx context.Context, q, st string, limit int) ([]services.CaseHit, error) {
	return s.search(ctx, q, st, limit)
}

type stubMessages struct {
	client     func(ctx context.Context, in services.ClientMessage) (*domain.CaseMessage, error)
	staff      func(ctx context.Context, in services.StaffMessage) (*domain.CaseMessage, bool, error)
	thread     func(ctx context.Context, telegramID int64, page, pageSize int) ([]domain.CaseMessage, int64, error)
	caseThread func(ctx context.Context, caseID uint) ([]domain.CaseMessage, error)
	dialogs    func(ctx context.Context) ([]repo.DialogRow, error)
	broadcast  func(ctx context.Context, text string, ids []int64) (services.BroadcastResult, error)
	notify     func(ctx context.Context, telegramID int64, text string) (bool, error)
}

func (s stubMessages) PostClientMessage(ctx context.Context, in services.ClientMessage) (*domain.CaseMessage, error) {
	return s.client(ctx, in)
}
func (s stubMessages) PostStaffMessage(ctx context.Context, in services.StaffMessage) (*domain.CaseMessage, bool, error) {
	return s.staff(ctx, in)
}
func (s stubMessages) Thread(ctx context.Context, id int64, p, ps int) ([]domain.CaseMessage, int64, error) {
	return s.thread(ctx, id, p, ps)
}
func (s stubMessages) CaseThread(ctx context.Context, id uint) ([]domain.CaseMessage, error) {
	return s.caseThread(ctx, id)
}
func (s stubMessages) Dialogs(ctx context.Context) ([]repo.DialogRow, error) { return s.dialogs(ctx) }
func (s stubMessages) Broadcast(ctx context.Context, text string, ids []int64) (services.BroadcastResult, error) {
	return s.broadcast(ctx, text, ids)
}
func (s stubMessages) Notify(ctx context.Context, id int64, text string) (bool, error) {
	return s.notify(ctx, id, text)
}

// memIdem is an in-memory IdempotencyStore.
type memIdem struct {
	mu   sync.Mutex
	recs map[string]domain.Idempotency
}

func newMemIdem() *memIdem { return &memIdem{recs: map[string]domain.Idempotency{}} }

func (m *memIdem) Get(_ context.Context, actor, scope, key string, now time.Time) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[actor+"|"+scope+"|"+key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, repo.ErrNotFound
	}
	return &rec, nil
}

func (m *memIdem) Create(_ context.Context, actor, scope, key string, id uint, status int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.recs[actor+"|"+scope+"|"+key] = domain.Idempotency{
		Actor: actor, Scope: scope, Key: key, ResourceID: id, Status: status,
		CreatedAt: now, ExpiresAt: now.Add(ttl),
	}
	return nil
}

// ---------- plumbing ----------

var testSecret = []byte("handlers-test-secret")

// newEngine returns a router with the idempotency validator installed. With
// auth set, requests must carry a staff token (see bearer).
func newEngine(auth bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	opts := middleware.AuthOptions{}
	if auth {
		opts.Secret = testSecret
	}
	r.Use(middleware.StaffAuth(opts))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	return r
}

// bearer returns headers authenticating as staff member sub.
func bearer(t *testing.T, sub string, extra map[string]string) map[string]string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, "", sub, sub, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	h := map[string]string{"Authorization": "Bearer " + tok}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body: %v; body=%s", err, w.Body.String())
	}
	return er
}

// ---------- helpers ----------

func TestClampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		q            string
		page, pageSz int
	}{
		{"", 1, 20},
		{"?page=-3&page_size=9999", 1, 100},
		{"?page=&page_size=0", 1, 1},
		{"?page=4&page_size=15", 4, 15},
		{"?page=x&page_size=y", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.q, nil)
		p, ps := clampPagination(c)
		if p != tc.page || ps != tc.pageSz {
			t.Fatalf("%q: got %d,%d want %d,%d", tc.q, p, ps, tc.page, tc.pageSz)
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(2, 20, 45)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("got %+v", p)
	}
	p = newPagination(3, 20, 45)
	if p.HasNext {
		t.Fatalf("last page has no next: %+v", p)
	}
	p = newPagination(1, 20, 0)
	if p.TotalPages != 0 || p.HasNext {
		t.Fatalf("empty: %+v", p)
	}
}

func TestFailService_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
		msg  string
	}{
		{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound, ""},
		{services.ErrCaseNotFound, http.StatusNotFound, ErrCodeNotFound, ""},
		{&services.MissingPayoutsError{IDs: []uint{3, 7}}, http.StatusNotFound, ErrCodeNotFound, ""},
		{services.ErrEmptyBatch, http.StatusBadRequest, ErrCodeBadRequest, ""},
		{services.ErrMessageTooLong, http.StatusBadRequest, ErrCodeBadRequest, ""},
		{services.ErrInvalidPeriod, http.StatusBadRequest, ErrCodeBadRequest, ""},
		{services.ErrPayoutAlreadyPaid, http.StatusConflict, ErrCodeConflict, ""},
		{fmt.Errorf("%w: new -> completed", services.ErrInvalidStatusTransition), http.StatusConflict, ErrCodeConflict, ""},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeInternal, "request timed out"},
		{fmt.Errorf("list cases: %w", errors.New("disk on fire")), http.StatusInternalServerError, ErrCodeListFailed, "internal error"},
	}
	for _, tc := range cases {
		r := newEngine(false)
		r.GET("/x", func(c *gin.Context) { failService(c, tc.err, ErrCodeListFailed) })
		w := do(r, http.MethodGet, "/x", "", nil)
		if w.Code != tc.code {
			t.Fatalf("%v: status=%d want %d", tc.err, w.Code, tc.code)
		}
		want := tc.msg
		if want == "" {
			want = tc.err.Error()
		}
		if er := decodeErr(t, w); er.Code != tc.kind || er.Message != want {
			t.Fatalf("%v: body=%+v", tc.err, er)
		}
	}
}

func TestPathIDs(t *testing.T) {
	r := newEngine(false)
	r.GET("/p/:id", func(c *gin.Context) {
		if id, good := pathID(c, "id"); good {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})
	r.GET("/t/:telegram_id", func(c *gin.Context) {
		if id, good := pathTelegramID(c); good {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})

	if w := do(r, http.MethodGet, "/p/12", "", nil); w.Code != http.StatusOK {
		t.Fatalf("valid id: %d", w.Code)
	}
	for _, p := range []string{"/p/0", "/p/-1", "/p/abc", "/t/0", "/t/x"} {
		if w := do(r, http.MethodGet, p, "", nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
	}
	if w := do(r, http.MethodGet, "/t/-1001", "", nil); w.Code != http.StatusOK {
		t.Fatalf("group chat id: %d", w.Code)
	}
}
