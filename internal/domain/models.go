// Package domain defines the persistence models for users, partner profiles,
// case questionnaires and the per-user message thread. These types are mapped
// with GORM and are shared by the repository, service, HTTP and bot layers.
package domain

import (
	"time"
)

// Questionnaire statuses. A questionnaire is created as StatusNew when the
// client submits it; staff move it forward from the back office.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

// Message sender kinds.
const (
	SenderAdmin  = "admin"
	SenderClient = "client"
)

// SectionGeneral is the section recorded for documents attached in the
// document phase of the questionnaire.
const SectionGeneral = "general"

// User is a chat-bot user identified by their Telegram account.
//
// Fields:
//   - ID: surrogate primary key.
//   - TelegramID: external identity; unique.
//   - Username / FirstName / LastName: display fields, refreshed on contact.
//   - RegisteredAt: first contact time.
//   - IsActive: cleared when a user blocks the bot (never hard-deleted).
type User struct {
	ID           uint      `json:"id"            gorm:"primaryKey"`
	TelegramID   int64     `json:"telegram_id"   gorm:"not null;uniqueIndex:ux_users_telegram"`
	Username     string    `json:"username"      gorm:"type:varchar(64)"`
	FirstName    string    `json:"first_name"    gorm:"type:varchar(128)"`
	LastName     string    `json:"last_name"     gorm:"type:varchar(128)"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null;index"`
	IsActive     bool      `json:"is_active"     gorm:"not null;default:true"`

	Profile *PartnerProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "user"
	}
}

// PartnerProfile holds the contact card of a partner. A user has at most one.
type PartnerProfile struct {
	ID                 uint      `json:"id"                    gorm:"primaryKey"`
	UserID             uint      `json:"user_id"               gorm:"not null;uniqueIndex:ux_partner_profiles_user"`
	FullName           string    `json:"full_name"             gorm:"type:varchar(255);not null"`
	CompanyName        string    `json:"company_name"          gorm:"type:varchar(255)"`
	Phone              string    `json:"phone"                 gorm:"type:varchar(32)"`
	Email              string    `json:"email"                 gorm:"type:varchar(255)"`
	Specialization     string    `json:"specialization"        gorm:"type:varchar(255)"`
	Experience         int       `json:"experience"            gorm:"not null;default:0"`
	ConsentToShareData bool      `json:"consent_to_share_data" gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the database table name for PartnerProfile.
func (PartnerProfile) TableName() string { return "partner_profiles" }

// CaseQuestionnaire is a submitted case intake form with seven free-text
// sections in fixed order.
type CaseQuestionnaire struct {
	ID                uint       `json:"id"                 gorm:"primaryKey"`
	UserID            uint       `json:"user_id"            gorm:"not null;index:idx_questionnaires_user,priority:1"`
	PartiesInfo       string     `json:"parties_info"       gorm:"type:text"`
	DisputeSubject    string     `json:"dispute_subject"    gorm:"type:text"`
	LegalBasis        string     `json:"legal_basis"        gorm:"type:text"`
	Chronology        string     `json:"chronology"         gorm:"type:text"`
	Evidence          string     `json:"evidence"           gorm:"type:text"`
	ProceduralHistory string     `json:"procedural_history" gorm:"type:text"`
	ClientGoal        string     `json:"client_goal"        gorm:"type:text"`
	Status            string     `json:"status"             gorm:"type:varchar(16);not null;default:'new';index;check:status IN ('new','in_progress','completed','rejected')"`
	CreatedAt         time.Time  `json:"created_at"         gorm:"index:idx_questionnaires_user,priority:2"`
	SentAt            *time.Time `json:"sent_at,omitempty"`

	User      User                        `json:"-"                   gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Documents []CaseQuestionnaireDocument `json:"documents,omitempty" gorm:"foreignKey:QuestionnaireID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CaseQuestionnaire.
func (CaseQuestionnaire) TableName() string { return "case_questionnaires" }

// Sections returns the seven answers in their fixed order.
func (q CaseQuestionnaire) Sections() [7]string {
	return [7]string{
		q.PartiesInfo,
		q.DisputeSubject,
		q.LegalBasis,
		q.Chronology,
		q.Evidence,
		q.ProceduralHistory,
		q.ClientGoal,
	}
}

// CaseQuestionnaireDocument is a file attached to a questionnaire.
type CaseQuestionnaireDocument struct {
	ID              uint      `json:"id"               gorm:"primaryKey"`
	QuestionnaireID uint      `json:"questionnaire_id" gorm:"not null;index"`
	Section         string    `json:"section"          gorm:"type:varchar(32);not null;default:'general'"`
	FilePath        string    `json:"file_path"        gorm:"type:varchar(512);not null"`
	FileType        string    `json:"file_type"        gorm:"type:varchar(16)"`
	OriginalName    string    `json:"original_name"    gorm:"type:varchar(255)"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// TableName returns the database table name for CaseQuestionnaireDocument.
func (CaseQuestionnaireDocument) TableName() string { return "case_questionnaire_documents" }

// CaseMessage is one entry of a user's conversation with staff.
//
// UserID owns the thread. QuestionnaireID points at the case the message was
// filed under; nil is the "general" bucket used before the user has any case.
// IsRead is only meaningful for client messages.
type CaseMessage struct {
	ID              uint      `json:"id"                         gorm:"primaryKey"`
	UserID          uint      `json:"user_id"                    gorm:"not null;index:idx_case_messages_thread,priority:1"`
	QuestionnaireID *uint     `json:"questionnaire_id,omitempty" gorm:"index"`
	SenderID        string    `json:"sender_id"                  gorm:"type:varchar(64);not null"`
	SenderKind      string    `json:"sender_kind"                gorm:"type:varchar(16);not null;check:sender_kind IN ('admin','client')"`
	Content         string    `json:"content"                    gorm:"type:text;not null"`
	IsRead          bool      `json:"is_read"                    gorm:"not null;default:false;index"`
	CreatedAt       time.Time `json:"created_at"                 gorm:"index:idx_case_messages_thread,priority:2"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CaseMessage.
func (CaseMessage) TableName() string { return "case_messages" }

// NotificationLog records one reminder attempt sent to a user.
type NotificationLog struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UserID    uint      `json:"user_id"    gorm:"not null;index:idx_notification_logs_user,priority:1"`
	Kind      string    `json:"kind"       gorm:"type:varchar(32);not null;index:idx_notification_logs_user,priority:2"`
	Attempt   int       `json:"attempt"    gorm:"not null"`
	Delivered bool      `json:"delivered"  gorm:"not null"`
	SentAt    time.Time `json:"sent_at"    gorm:"not null"`
}

// TableName returns the database table name for NotificationLog.
func (NotificationLog) TableName() string { return "notification_logs" }
