package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection so the PRAGMA below applies to every statement.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&User{}, &PartnerProfile{}, &CaseQuestionnaire{}, &CaseQuestionnaireDocument{},
		&CaseMessage{}, &ReferralLink{}, &ReferralRelationship{}, &PartnerRevenue{},
		&ReferralPayout{}, &NotificationLog{}, &Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		User{}.TableName():                      "users",
		PartnerProfile{}.TableName():            "partner_profiles",
		CaseQuestionnaire{}.TableName():         "case_questionnaires",
		CaseQuestionnaireDocument{}.TableName(): "case_questionnaire_documents",
		CaseMessage{}.TableName():               "case_messages",
		ReferralLink{}.TableName():              "referral_links",
		ReferralRelationship{}.TableName():      "referral_relationships",
		PartnerRevenue{}.TableName():            "partner_revenues",
		ReferralPayout{}.TableName():            "referral_payouts",
		NotificationLog{}.TableName():           "notification_logs",
		Idempotency{}.TableName():               "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	checks := []struct {
		model any
		index string
	}{
		{&User{}, "ux_users_telegram"},
		{&PartnerProfile{}, "ux_partner_profiles_user"},
		{&CaseQuestionnaire{}, "idx_questionnaires_user"},
		{&CaseMessage{}, "idx_case_messages_thread"},
		{&ReferralLink{}, "ux_referral_links_code"},
		{&ReferralRelationship{}, "ux_referral_relationships_referred"},
		{&ReferralPayout{}, "idx_referral_payouts_period"},
		{&Idempotency{}, "ux_actor_scope_key"},
	}
	for _, c := range checks {
		if !m.HasIndex(c.model, c.index) {
			t.Fatalf("expected index %s on %T", c.index, c.model)
		}
	}
}

func TestReferralRelationship_UniquePerReferred(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	a := &User{TelegramID: 1, RegisteredAt: now, IsActive: true}
	b := &User{TelegramID: 2, RegisteredAt: now, IsActive: true}
	c := &User{TelegramID: 3, RegisteredAt: now, IsActive: true}
	for _, u := range []*User{a, b, c} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("insert user: %v", err)
		}
	}

	if err := db.Create(&ReferralRelationship{ReferrerID: a.ID, ReferredID: c.ID}).Error; err != nil {
		t.Fatalf("first relationship: %v", err)
	}
	if err := db.Create(&ReferralRelationship{ReferrerID: b.ID, ReferredID: c.ID}).Error; err == nil {
		t.Fatalf("expected unique violation for second referrer of the same user")
	}
}

func TestChecks_RejectUnknownEnums(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()
	u := &User{TelegramID: 10, RegisteredAt: now, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}

	if err := db.Create(&CaseQuestionnaire{UserID: u.ID, Status: "sent"}).Error; err == nil {
		t.Fatalf("expected check violation for status 'sent'")
	}
	if err := db.Create(&CaseMessage{UserID: u.ID, SenderID: "x", SenderKind: "bot", Content: "hi"}).Error; err == nil {
		t.Fatalf("expected check violation for sender_kind 'bot'")
	}
	if err := db.Create(&PartnerRevenue{PartnerID: u.ID, Amount: 0}).Error; err == nil {
		t.Fatalf("expected check violation for zero revenue")
	}
	if err := db.Create(&ReferralPayout{ReferrerID: u.ID, Amount: 1, Month: 13, Year: 2025, Status: PayoutPending}).Error; err == nil {
		t.Fatalf("expected check violation for month 13")
	}
}

func TestQuestionnaire_CascadeDocuments(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()
	u := &User{TelegramID: 20, RegisteredAt: now, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	q := &CaseQuestionnaire{
		UserID: u.ID,
		Status: StatusNew,
		Documents: []CaseQuestionnaireDocument{
			{Section: SectionGeneral, FilePath: "/tmp/a.pdf", FileType: "pdf", OriginalName: "a.pdf", UploadedAt: now},
		},
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("insert questionnaire: %v", err)
	}
	var cnt int64
	db.Model(&CaseQuestionnaireDocument{}).Where("questionnaire_id = ?", q.ID).Count(&cnt)
	if cnt != 1 {
		t.Fatalf("documents = %d; want 1", cnt)
	}

	if err := db.Delete(&CaseQuestionnaire{}, q.ID).Error; err != nil {
		t.Fatalf("delete questionnaire: %v", err)
	}
	db.Model(&CaseQuestionnaireDocument{}).Where("questionnaire_id = ?", q.ID).Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected documents to cascade-delete, got %d", cnt)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusRejected, true},
		{StatusNew, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusRejected, true},
		{StatusInProgress, StatusNew, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusRejected, StatusNew, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%q,%q) = %v; want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		u    User
		want string
	}{
		{User{FirstName: "Ann", LastName: "Lee"}, "Ann Lee"},
		{User{FirstName: "Ann"}, "Ann"},
		{User{Username: "ann"}, "@ann"},
		{User{}, "user"},
	}
	for _, tc := range cases {
		if got := tc.u.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q; want %q", tc.u, got, tc.want)
		}
	}
}
