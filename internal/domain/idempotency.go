package domain

import "time"

// Idempotency records the outcome of a previously processed admin request,
// keyed by (actor, scope, key). A retried POST with the same Idempotency-Key
// is answered with the stored resource instead of creating a second one.
//
// Scope names the operation (e.g. "revenues", "payouts"); ResourceID is the
// primary key of the row created by the first request.
type Idempotency struct {
	ID         string    `gorm:"type:varchar(36);not null;primaryKey"`
	Actor      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_actor_scope_key,priority:1"`
	Scope      string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_actor_scope_key,priority:2"`
	Key        string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_actor_scope_key,priority:3"`
	ResourceID uint      `gorm:"not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
