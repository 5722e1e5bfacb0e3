package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

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

func seedUser(t *testing.T, db *gorm.DB, tgID int64, first string) *domain.User {
	t.Helper()
	u := &domain.User{TelegramID: tgID, FirstName: first, Username: fmt.Sprintf("u%d", tgID), IsActive: true}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedProfile(t *testing.T, db *gorm.DB, userID uint, name string) {
	t.Helper()
	if err := repo.UpsertProfile(context.Background(), db, &domain.PartnerProfile{UserID: userID, FullName: name}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// sent is one recorded notification.
type sent struct {
	ChatID int64
	Text   string
}

// recorder is a notify.Notifier that records calls and fails for chat ids
// listed in fail.
type recorder struct {
	mu   sync.Mutex
	msgs []sent
	fail map[int64]error
}

func (r *recorder) Notify(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[chatID]; err != nil {
		return err
	}
	r.msgs = append(r.msgs, sent{ChatID: chatID, Text: text})
	return nil
}

func (r *recorder) to(chatID int64) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
