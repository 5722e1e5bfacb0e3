package domain

import "time"

// Payout statuses.
const (
	PayoutPending   = "pending"
	PayoutPaid      = "paid"
	PayoutCancelled = "cancelled"
)

// ReferralLink is a partner's invitation code. One per partner.
type ReferralLink struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	PartnerID uint      `json:"partner_id" gorm:"not null;uniqueIndex:ux_referral_links_partner"`
	Code      string    `json:"code"       gorm:"type:varchar(16);not null;uniqueIndex:ux_referral_links_code"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ReferralLink.
func (ReferralLink) TableName() string { return "referral_links" }

// ReferralRelationship is a directed referrer -> referred edge. The unique
// index on ReferredID guarantees a user is referred at most once.
type ReferralRelationship struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	ReferrerID uint      `json:"referrer_id" gorm:"not null;index"`
	ReferredID uint      `json:"referred_id" gorm:"not null;uniqueIndex:ux_referral_relationships_referred"`
	CreatedAt  time.Time `json:"created_at"`

	Referrer User `json:"-" gorm:"foreignKey:ReferrerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Referred User `json:"-" gorm:"foreignKey:ReferredID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ReferralRelationship.
func (ReferralRelationship) TableName() string { return "referral_relationships" }

// PartnerRevenue is an append-only ledger entry. Amount is in whole currency
// units and always positive.
type PartnerRevenue struct {
	ID              uint      `json:"id"                         gorm:"primaryKey"`
	PartnerID       uint      `json:"partner_id"                 gorm:"not null;index:idx_partner_revenues_partner,priority:1"`
	Amount          int64     `json:"amount"                     gorm:"not null;check:amount > 0"`
	Description     string    `json:"description"                gorm:"type:varchar(512)"`
	ClientReference *string   `json:"client_reference,omitempty" gorm:"type:varchar(128)"`
	CreatedAt       time.Time `json:"created_at"                 gorm:"index:idx_partner_revenues_partner,priority:2"`

	Partner User `json:"-" gorm:"foreignKey:PartnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PartnerRevenue.
func (PartnerRevenue) TableName() string { return "partner_revenues" }

// ReferralPayout is one commission disbursement to a referrer for a month.
// PaidAt is stamped once, when Status first becomes PayoutPaid.
type ReferralPayout struct {
	ID         uint       `json:"id"                gorm:"primaryKey"`
	ReferrerID uint       `json:"referrer_id"       gorm:"not null;index:idx_referral_payouts_period,priority:1"`
	Amount     int64      `json:"amount"            gorm:"not null;check:amount >= 0"`
	Month      int        `json:"month"             gorm:"not null;index:idx_referral_payouts_period,priority:3;check:month BETWEEN 1 AND 12"`
	Year       int        `json:"year"              gorm:"not null;index:idx_referral_payouts_period,priority:2"`
	Status     string     `json:"status"            gorm:"type:varchar(16);not null;default:'pending';index;check:status IN ('pending','paid','cancelled')"`
	CreatedAt  time.Time  `json:"created_at"        gorm:"index"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`

	Referrer User `json:"-" gorm:"foreignKey:ReferrerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ReferralPayout.
func (ReferralPayout) TableName() string { return "referral_payouts" }

// ValidPayoutStatus reports whether s is a known payout status.
func ValidPayoutStatus(s string) bool {
	switch s {
	case PayoutPending, PayoutPaid, PayoutCancelled:
		return true
	}
	return false
}

// ValidQuestionnaireStatus reports whether s is a known questionnaire status.
func ValidQuestionnaireStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a questionnaire may move from one status to
// another. Completed and rejected are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusNew:
		return to == StatusInProgress || to == StatusRejected
	case StatusInProgress:
		return to == StatusCompleted || to == StatusRejected
	}
	return false
}
