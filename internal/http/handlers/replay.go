package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/http/middleware"
)

// HeaderReplayed is set on responses replayed for a repeated Idempotency-Key.
const HeaderReplayed = middleware.HeaderReplayed

// previous returns the stored outcome of an earlier request with the same
// (staff, scope, key), or nil when there is none or no key was sent.
func (h *Handlers) previous(c *gin.Context) *domain.Idempotency {
	if h.idem == nil {
		return nil
	}
	key, has := middleware.GetIdempotencyKey(c)
	if !has {
		return nil
	}
	rec, err := h.idem.Get(c.Request.Context(), middleware.StaffID(c), middleware.IdempotencyScope(c), key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil
	}
	return rec
}

// remember records that this request created resourceID. Best effort: a
// failure only costs replay protection for this key.
func (h *Handlers) remember(c *gin.Context, resourceID uint, status int) {
	if h.idem == nil {
		return
	}
	key, has := middleware.GetIdempotencyKey(c)
	if !has {
		return
	}
	err := h.idem.Create(c.Request.Context(), middleware.StaffID(c), middleware.IdempotencyScope(c), key, resourceID, status, h.idemTTL)
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency record not stored")
	}
}
