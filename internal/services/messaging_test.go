package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"
)

const staffChat = -1001

func newMessaging(t *testing.T) (*MessagingService, *recorder) {
	t.Helper()
	rec := &recorder{fail: map[int64]error{}}
	return &MessagingService{DB: newSvcDB(t), Notifier: rec, StaffChatID: staffChat}, rec
}

func submitCase(t *testing.T, s *MessagingService, tgID int64) uint {
	t.Helper()
	q := filledForm(t)
	_ = q.Finish()
	c, err := (&QuestionnaireService{DB: s.DB}).Submit(context.Background(), tgID, q)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return c.ID
}

func TestMessagingService_GeneralBucketThenCase(t *testing.T) {
	s, rec := newMessaging(t)
	ctx := context.Background()
	seedUser(t, s.DB, 100, "Ann")

	m1, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 100, FirstName: "Ann", Text: "hello"})
	if err != nil {
		t.Fatalf("PostClientMessage: %v", err)
	}
	if m1.QuestionnaireID != nil {
		t.Fatalf("message before any case must be in the general bucket, got %v", *m1.QuestionnaireID)
	}

	caseID := submitCase(t, s, 100)
	m2, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 100, Text: "about my case"})
	if err != nil {
		t.Fatalf("PostClientMessage: %v", err)
	}
	if m2.QuestionnaireID == nil || *m2.QuestionnaireID != caseID {
		t.Fatalf("expected case bucket %d, got %v", caseID, m2.QuestionnaireID)
	}

	general, _ := repo.ListGeneralMessages(ctx, s.DB, m1.UserID)
	if len(general) != 1 || general[0].ID != m1.ID {
		t.Fatalf("general bucket changed: %+v", general)
	}
	caseMsgs, err := s.CaseThread(ctx, caseID)
	if err != nil || len(caseMsgs) != 1 || caseMsgs[0].ID != m2.ID {
		t.Fatalf("CaseThread = %+v, %v", caseMsgs, err)
	}

	mirrored := rec.to(staffChat)
	if len(mirrored) != 2 || !strings.Contains(mirrored[0].Text, "general") || !strings.Contains(mirrored[1].Text, "case #") {
		t.Fatalf("unexpected staff mirror: %+v", mirrored)
	}
}

func TestMessagingService_PostClientMessage_PlaceholderAndValidation(t *testing.T) {
	s, _ := newMessaging(t)
	ctx := context.Background()

	if _, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 1, Text: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	s.MaxRunes = 5
	if _, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 1, Text: "ёёёёёё"}); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
	if _, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 1, Text: "ёёёёё"}); err != nil {
		t.Fatalf("five runes should fit: %v", err)
	}
	u, err := repo.GetUserByTelegramID(ctx, s.DB, 1)
	if err != nil {
		t.Fatalf("placeholder user not created: %v", err)
	}
	if u.Username != "user_1" || u.FirstName != "Client" {
		t.Fatalf("unexpected placeholder: %+v", u)
	}
}

func TestMessagingService_PostClientMessage_LosesFirstContactRace(t *testing.T) {
	s, _ := newMessaging(t)
	ctx := context.Background()

	// The first user insert finds a rival row for the same Telegram id
	// already written, as a concurrent /start would leave it.
	raced := false
	err := s.DB.Callback().Create().Before("gorm:create").Register("test:rival_user", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*domain.User); !ok || raced {
			return
		}
		raced = true
		rival := &domain.User{TelegramID: 5, Username: "rival", FirstName: "Rival", IsActive: true}
		if err := repo.CreateUser(ctx, tx.Session(&gorm.Session{NewDB: true}), rival); err != nil {
			t.Errorf("rival insert: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	msg, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 5, Text: "hello"})
	if err != nil {
		t.Fatalf("duplicate first contact must be recovered: %v", err)
	}
	if !raced {
		t.Fatalf("race was not exercised")
	}
	var n int64
	s.DB.Model(&domain.User{}).Where("telegram_id = ?", 5).Count(&n)
	u, gerr := repo.GetUserByTelegramID(ctx, s.DB, 5)
	if n != 1 || gerr != nil || msg.UserID != u.ID {
		t.Fatalf("users=%d err=%v msg.UserID=%d", n, gerr, msg.UserID)
	}
}

func TestMessagingService_PostStaffMessage(t *testing.T) {
	s, rec := newMessaging(t)
	ctx := context.Background()
	seedUser(t, s.DB, 100, "Ann")
	seedUser(t, s.DB, 200, "Bob")

	if _, _, err := s.PostStaffMessage(ctx, StaffMessage{Text: "hi"}); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
	if _, _, err := s.PostStaffMessage(ctx, StaffMessage{TelegramID: 999, Text: "hi"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	msg, delivered, err := s.PostStaffMessage(ctx, StaffMessage{TelegramID: 100, Text: "<b>hi</b>"})
	if err != nil || !delivered {
		t.Fatalf("PostStaffMessage: delivered=%v err=%v", delivered, err)
	}
	if msg.SenderKind != domain.SenderAdmin || msg.SenderID != "admin" || !msg.IsRead || msg.QuestionnaireID != nil {
		t.Fatalf("unexpected stored message: %+v", msg)
	}
	if got := rec.to(100); len(got) != 1 || !strings.Contains(got[0].Text, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Fatalf("client delivery not escaped: %+v", got)
	}

	caseID := submitCase(t, s, 100)
	msg, _, err = s.PostStaffMessage(ctx, StaffMessage{CaseID: caseID, StaffID: "alice", Text: "update"})
	if err != nil || msg.QuestionnaireID == nil || *msg.QuestionnaireID != caseID || msg.SenderID != "alice" {
		t.Fatalf("by case id: %+v, %v", msg, err)
	}
	if _, _, err := s.PostStaffMessage(ctx, StaffMessage{CaseID: caseID, TelegramID: 200, Text: "x"}); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("case/user mismatch: expected ErrCaseNotFound, got %v", err)
	}
	if _, _, err := s.PostStaffMessage(ctx, StaffMessage{CaseID: 9999, Text: "x"}); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestMessagingService_PostStaffMessage_BlockedKeepsMessage(t *testing.T) {
	s, rec := newMessaging(t)
	ctx := context.Background()
	u := seedUser(t, s.DB, 100, "Ann")
	rec.fail[100] = notify.ErrBlocked

	msg, delivered, err := s.PostStaffMessage(ctx, StaffMessage{TelegramID: 100, Text: "are you there?"})
	if err != nil {
		t.Fatalf("PostStaffMessage: %v", err)
	}
	if delivered {
		t.Fatalf("expected delivered=false")
	}
	if n, _ := repo.CountThread(ctx, s.DB, u.ID); n != 1 || msg.ID == 0 {
		t.Fatalf("message must be stored even when delivery fails; count=%d", n)
	}
	got, _ := repo.GetUser(ctx, s.DB, u.ID)
	if got.IsActive {
		t.Fatalf("user who blocked the bot should be inactive")
	}
}

func TestMessagingService_ThreadMarksRead(t *testing.T) {
	s, _ := newMessaging(t)
	ctx := context.Background()
	seedUser(t, s.DB, 100, "Ann")
	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.PostClientMessage(ctx, ClientMessage{TelegramID: 100, Text: text}); err != nil {
			t.Fatalf("PostClientMessage: %v", err)
		}
	}

	dialogs, err := s.Dialogs(ctx)
	if err != nil || len(dialogs) != 1 || dialogs[0].Unread != 3 || dialogs[0].LastMessage != "three" {
		t.Fatalf("Dialogs = %+v, %v", dialogs, err)
	}

	items, total, err := s.Thread(ctx, 100, 1, 2)
	if err != nil || total != 3 || len(items) != 2 || items[0].Content != "one" {
		t.Fatalf("Thread = %+v, total %d, %v", items, total, err)
	}
	if n, _ := repo.CountUnread(ctx, s.DB); n != 0 {
		t.Fatalf("Thread should mark the thread read; unread=%d", n)
	}

	recent, err := s.UserThread(ctx, 100, 2)
	if err != nil || len(recent) != 2 || recent[1].Content != "three" {
		t.Fatalf("UserThread = %+v, %v", recent, err)
	}
	if _, _, err := s.Thread(ctx, 999, 1, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMessagingService_Broadcast(t *testing.T) {
	s, rec := newMessaging(t)
	ctx := context.Background()
	a := seedUser(t, s.DB, 100, "Ann")
	b := seedUser(t, s.DB, 200, "Bob")
	seedUser(t, s.DB, 300, "Cid") // no profile
	seedProfile(t, s.DB, a.ID, "Ann A")
	seedProfile(t, s.DB, b.ID, "Bob B")
	rec.fail[200] = errors.New("boom")

	res, err := s.Broadcast(ctx, "news", nil)
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if res.Total != 2 || res.Sent != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = s.Broadcast(ctx, "direct", []int64{300})
	if err != nil || res.Total != 1 || res.Sent != 1 {
		t.Fatalf("explicit recipients: %+v, %v", res, err)
	}
	if _, err := s.Broadcast(ctx, "", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessagingService_Notify(t *testing.T) {
	s, rec := newMessaging(t)
	ctx := context.Background()

	ok, err := s.Notify(ctx, 42, "ping")
	if err != nil || !ok || len(rec.to(42)) != 1 {
		t.Fatalf("Notify = %v, %v", ok, err)
	}
	if _, err := s.Notify(ctx, 0, "ping"); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
	var n int64
	s.DB.Model(&domain.CaseMessage{}).Count(&n)
	if n != 0 {
		t.Fatalf("Notify must not store messages")
	}
}
