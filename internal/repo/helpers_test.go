package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/lawdesk/internal/domain"
)

// newRepoDB returns an isolated in-memory database with the full schema.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
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
	// PRAGMAs are per connection; pin the pool to one.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, tgID int64, first, username string) *domain.User {
	t.Helper()
	u := &domain.User{TelegramID: tgID, FirstName: first, Username: username}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("CreateUser(%d): %v", tgID, err)
	}
	return u
}

func mustProfile(t *testing.T, db *gorm.DB, userID uint, fullName string) *domain.PartnerProfile {
	t.Helper()
	p := &domain.PartnerProfile{UserID: userID, FullName: fullName, CompanyName: "Acme"}
	if err := UpsertProfile(context.Background(), db, p); err != nil {
		t.Fatalf("UpsertProfile(%d): %v", userID, err)
	}
	return p
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
