// Payout HTTP handlers.
//
// This file exposes REST endpoints for referral payouts:
//   - GET  /payouts             (filtered, paginated)
//   - GET  /payouts/count       (filtered count)
//   - POST /payouts             (create pending payout, idempotent)
//   - POST /payouts/generate    (create the pending payouts of a month)
//   - PUT  /payouts/{id}        (partial update)
//   - PUT  /payouts/{id}/pay    (mark paid)
//   - PUT  /payouts/batch/pay   (mark several paid in one transaction)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/utils"
)

//
// DTOs
//

// CreatePayoutRequest is the JSON payload for creating a payout.
type CreatePayoutRequest struct {
	ReferrerID uint  `json:"referrer_id" binding:"required" example:"3"`
	Amount     int64 `json:"amount" example:"2500"`
	Month      int   `json:"month" binding:"required" example:"9"`
	Year       int   `json:"year" binding:"required" example:"2026"`
}

// UpdatePayoutRequest is the JSON payload for a partial payout update.
// Omitted fields are left unchanged.
type UpdatePayoutRequest struct {
	Amount *int64  `json:"amount,omitempty" example:"3000"`
	Month  *int    `json:"month,omitempty" example:"10"`
	Year   *int    `json:"year,omitempty" example:"2026"`
	Status *string `json:"status,omitempty" enums:"pending,paid,cancelled" example:"cancelled"`
}

// BatchPayRequest is the JSON payload for paying several payouts at once.
type BatchPayRequest struct {
	PayoutIDs []uint `json:"payout_ids" example:"1,2,3"`
}

// BatchPayResponse reports how many payouts changed to paid.
type BatchPayResponse struct {
	Updated int64 `json:"updated" example:"2"`
}

// GeneratePayoutsRequest selects the month to generate payouts for. An empty
// body selects the previous calendar month.
type GeneratePayoutsRequest struct {
	Year  int `json:"year" example:"2026"`
	Month int `json:"month" example:"9"`
}

// ListPayoutsResponse wraps a page of payouts.
type ListPayoutsResponse struct {
	Payouts    []repo.PayoutRow `json:"payouts"`
	Pagination Pagination       `json:"pagination"`
}

// CountResponse carries a bare count.
type CountResponse struct {
	Count int64 `json:"count" example:"12"`
}

//
// Helpers
//

// payoutFilter reads the listing filters from the query string.
func payoutFilter(c *gin.Context) (repo.PayoutFilter, bool) {
	f := repo.PayoutFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Month:  utils.AtoiDefault(c.Query("month"), 0),
		Year:   utils.AtoiDefault(c.Query("year"), 0),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("referrer_id"); raw != "" {
		id, good := utils.ParseID(raw)
		if !good {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "referrer_id must be a positive integer")
			return f, false
		}
		f.ReferrerID = id
	}
	return f, true
}

// previousMonth returns the calendar month before now.
func previousMonth(now time.Time) (year, month int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), int(prev.Month())
}

//
// Handlers
//

// ListPayouts godoc
// @ID          listPayouts
// @Summary     List payouts (filtered, paginated)
// @Description Returns payouts joined with their referrer, newest first.
// @Tags        Payouts
// @Produce     json
// @Security    BearerAuth
//
// @Param       status       query  string  false "Status"  Enums(pending, paid, cancelled)
// @Param       month        query  int     false "Month"   minimum(1) maximum(12)
// @Param       year         query  int     false "Year"
// @Param       referrer_id  query  int     false "Referrer user id"
// @Param       search       query  string  false "Substring of referrer name or username"
// @Param       page         query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size    query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListPayoutsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts [get]
func (h *Handlers) ListPayouts(c *gin.Context) {
	f, good := payoutFilter(c)
	if !good {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.payouts.List(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListPayoutsResponse{Payouts: items, Pagination: newPagination(page, pageSize, total)})
}

// CountPayouts godoc
// @ID          countPayouts
// @Summary     Count payouts
// @Description Counts payouts matching the same filters as the listing.
// @Tags        Payouts
// @Produce     json
// @Security    BearerAuth
//
// @Param       status       query  string  false "Status"  Enums(pending, paid, cancelled)
// @Param       month        query  int     false "Month"   minimum(1) maximum(12)
// @Param       year         query  int     false "Year"
// @Param       referrer_id  query  int     false "Referrer user id"
// @Param       search       query  string  false "Substring of referrer name or username"
//
// @Success     200  {object}  handlers.CountResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts/count [get]
func (h *Handlers) CountPayouts(c *gin.Context) {
	f, good := payoutFilter(c)
	if !good {
		return
	}
	n, err := h.payouts.Count(c.Request.Context(), f)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, CountResponse{Count: n})
}

// CreatePayout godoc
// @ID          createPayout
// @Summary     Create a payout
// @Description Stores a pending payout for a referrer and period.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Payouts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(payout-2026-09-3)
// @Param       body             body    handlers.CreatePayoutRequest  true  "Payout"
//
// @Success     201  {object}  domain.ReferralPayout
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Referrer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts [post]
func (h *Handlers) CreatePayout(c *gin.Context) {
	ctx := c.Request.Context()

	if rec := h.previous(c); rec != nil {
		if prev, err := h.payouts.Get(ctx, rec.ResourceID); err == nil {
			c.Header(HeaderReplayed, "true")
			ok(c, rec.Status, prev)
			return
		}
	}

	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "referrer_id, month and year required")
		return
	}

	p, err := h.payouts.Create(ctx, services.PayoutInput{
		ReferrerID: req.ReferrerID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	h.remember(c, p.ID, http.StatusCreated)
	ok(c, http.StatusCreated, p)
}

// GeneratePayouts godoc
// @ID          generatePayouts
// @Summary     Generate monthly payouts
// @Description Computes each referrer's commission for the month and creates pending payouts,
// @Description skipping referrers that already have one. Defaults to the previous month.
// @Tags        Payouts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.GeneratePayoutsRequest  false  "Period"
//
// @Success     200  {object}  services.GenerateResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts/generate [post]
func (h *Handlers) GeneratePayouts(c *gin.Context) {
	var req GeneratePayoutsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	if req.Year == 0 && req.Month == 0 {
		req.Year, req.Month = previousMonth(time.Now().UTC())
	}

	res, err := h.payouts.Generate(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusOK, res)
}

// UpdatePayout godoc
// @ID          updatePayout
// @Summary     Update a payout
// @Description Applies a partial update. Setting status to paid stamps paid_at once.
// @Tags        Payouts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int  true  "Payout id"  example(12)
// @Param       body  body  handlers.UpdatePayoutRequest  true  "Fields to change"
//
// @Success     200  {object}  domain.ReferralPayout
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Payout not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Conflict"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts/{id} [put]
func (h *Handlers) UpdatePayout(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	var req UpdatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.payouts.Update(c.Request.Context(), id, services.PayoutPatch{
		Amount: req.Amount,
		Month:  req.Month,
		Year:   req.Year,
		Status: req.Status,
	})
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, p)
}

// MarkPayoutPaid godoc
// @ID          markPayoutPaid
// @Summary     Mark a payout paid
// @Description Transitions a pending payout to paid and stamps paid_at.
// @Tags        Payouts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Payout id"  example(12)
//
// @Success     200  {object}  domain.ReferralPayout
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Payout not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already paid or cancelled"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts/{id}/pay [put]
func (h *Handlers) MarkPayoutPaid(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	p, err := h.payouts.MarkPaid(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, p)
}

// BatchMarkPaid godoc
// @ID          batchMarkPaid
// @Summary     Mark several payouts paid
// @Description Pays every pending payout among the ids in one transaction. Unknown ids fail the whole batch.
// @Tags        Payouts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.BatchPayRequest  true  "Payout ids"
//
// @Success     200  {object}  handlers.BatchPayResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Some payouts not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payouts/batch/pay [put]
func (h *Handlers) BatchMarkPaid(c *gin.Context) {
	var req BatchPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payout_ids required")
		return
	}
	n, err := h.payouts.BatchMarkPaid(c.Request.Context(), req.PayoutIDs)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, BatchPayResponse{Updated: n})
}
