package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

// ---------- test helpers ----------

const (
	adminChat    int64 = -200
	partnersChat int64 = -100
)

func newBotDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bot_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeAPI records everything the bot sends. Sends to chats listed in fail
// return the configured error.
type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
	reqs []tgbotapi.Chattable
	fail map[int64]error
	next int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[chatIDOf(c)]; err != nil {
		return tgbotapi.Message{}, err
	}
	f.sent = append(f.sent, c)
	f.next++
	return tgbotapi.Message{MessageID: f.next}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.invalid/" + fileID, nil
}

func (f *fakeAPI) failFor(chatID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.fail = map[int64]error{}
	}
	f.fail[chatID] = err
}

func chatIDOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.DocumentConfig:
		return v.ChatID
	}
	return 0
}

// texts returns the text of every message sent or edited in chatID.
func (f *fakeAPI) texts(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if chatIDOf(c) != chatID {
			continue
		}
		switch v := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, v.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, v.Text)
		}
	}
	return out
}

func (f *fakeAPI) last(chatID int64) string {
	all := f.texts(chatID)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

func (f *fakeAPI) contains(chatID int64, sub string) bool {
	for _, s := range f.texts(chatID) {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (f *fakeAPI) documents(chatID int64) []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok && d.ChatID == chatID {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeAPI) photos(chatID int64) []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok && p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

// fakeFetcher writes a fixed body to dst.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, fileID, dst string, _ int64) (int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fileID)
	f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	body := []byte("%PDF-1.4 test")
	if err := os.WriteFile(dst, body, 0o640); err != nil {
		return 0, err
	}
	return int64(len(body)), nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// note is one recorded staff notification.
type note struct {
	ChatID int64
	Text   string
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{ChatID: chatID, Text: text})
	return nil
}

func (r *recorder) to(chatID int64) []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []note
	for _, n := range r.notes {
		if n.ChatID == chatID {
			out = append(out, n)
		}
	}
	return out
}

type harness struct {
	bot   *Bot
	api   *fakeAPI
	files *fakeFetcher
	rec   *recorder
	db    *gorm.DB
	store *session.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newBotDB(t)
	api := &fakeAPI{}
	files := &fakeFetcher{}
	rec := &recorder{}
	store := session.NewMemoryStore()

	b := New(Deps{
		API:       api,
		Sessions:  store,
		Notifier:  rec,
		Files:     files,
		Users:     &services.UserService{DB: db},
		Referrals: &services.ReferralService{DB: db, BotURL: "https://t.me/lawdesk_bot"},
		Profiles:  &services.ProfileService{DB: db},
		Revenue:   &services.RevenueService{DB: db},
		Cases:     &services.QuestionnaireService{DB: db},
		Messages:  &services.MessagingService{DB: db, Notifier: rec, StaffChatID: adminChat},
	}, Options{
		AdminChatID:    adminChat,
		PartnersChatID: partnersChat,
		UploadDir:      t.TempDir(),
		Policy:         forms.DefaultPolicy(),
		ThrottleRPS:    1000,
		ThrottleBurst:  1000,
	})
	return &harness{bot: b, api: api, files: files, rec: rec, db: db, store: store}
}

func (h *harness) do(upd tgbotapi.Update) { h.bot.Handle(context.Background(), upd) }

func (h *harness) text(uid int64, text string) { h.do(textUpdate(uid, text)) }

func (h *harness) press(uid int64, data string) { h.do(callbackUpdate(uid, data)) }

func (h *harness) session(t *testing.T, uid int64) *session.Session {
	t.Helper()
	s, err := h.store.Get(context.Background(), uid)
	if err != nil {
		return nil
	}
	return s
}

var updateSeq int

func sender(uid int64) *tgbotapi.User {
	return &tgbotapi.User{ID: uid, FirstName: fmt.Sprintf("User%d", uid), UserName: fmt.Sprintf("u%d", uid)}
}

func baseMessage(uid int64) *tgbotapi.Message {
	updateSeq++
	return &tgbotapi.Message{
		MessageID: updateSeq,
		From:      sender(uid),
		Chat:      &tgbotapi.Chat{ID: uid, Type: "private"},
	}
}

func textUpdate(uid int64, text string) tgbotapi.Update {
	m := baseMessage(uid)
	m.Text = text
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: updateSeq, Message: m}
}

func documentUpdate(uid int64, name string, size int) tgbotapi.Update {
	m := baseMessage(uid)
	m.Document = &tgbotapi.Document{FileID: "file-" + name, FileName: name, FileSize: size}
	return tgbotapi.Update{UpdateID: updateSeq, Message: m}
}

func photoUpdate(uid int64) tgbotapi.Update {
	m := baseMessage(uid)
	m.Photo = []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90, Height: 90, FileSize: 1000},
		{FileID: "large", Width: 1280, Height: 1280, FileSize: 200000},
	}
	return tgbotapi.Update{UpdateID: updateSeq, Message: m}
}

func callbackUpdate(uid int64, data string) tgbotapi.Update {
	updateSeq++
	return tgbotapi.Update{
		UpdateID: updateSeq,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   fmt.Sprintf("cb%d", updateSeq),
			From: sender(uid),
			Message: &tgbotapi.Message{
				MessageID: 1,
				Chat:      &tgbotapi.Chat{ID: uid, Type: "private"},
			},
			Data: data,
		},
	}
}
