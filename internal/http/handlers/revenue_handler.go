// Revenue HTTP handlers.
//
// This file exposes REST endpoints for the partner revenue ledger:
//   - GET  /revenues               (all entries, paginated)
//   - POST /revenues               (record an entry, idempotent)
//   - GET  /revenues/{partner_id}  (entries of one partner, paginated)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (staff, scope, key), the handler returns that recorded
// entry and sets `Idempotency-Replayed: true`.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

//
// DTOs
//

// RecordRevenueRequest is the JSON payload for recording partner revenue.
type RecordRevenueRequest struct {
	// PartnerID is the internal user id of the partner.
	PartnerID uint `json:"partner_id" binding:"required" example:"7"`
	// Amount is in whole currency units and must be positive.
	Amount int64 `json:"amount" binding:"required" example:"150000"`
	// Description defaults to a generic label when empty.
	Description string `json:"description" example:"Contract dispute, first instance"`
	// ClientReference optionally identifies the client on the partner side.
	ClientReference string `json:"client_reference" example:"ACME-2024-17"`
}

// ListRevenuesResponse wraps a page of ledger entries.
type ListRevenuesResponse struct {
	Revenues   []repo.RevenueRow `json:"revenues"`
	Pagination Pagination        `json:"pagination"`
}

//
// Handlers
//

// ListRevenues godoc
// @ID          listRevenues
// @Summary     List revenue entries (paginated)
// @Description Returns ledger entries of every partner joined with the partner name, newest first.
// @Tags        Revenues
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListRevenuesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /revenues [get]
func (h *Handlers) ListRevenues(c *gin.Context) {
	h.listRevenues(c, 0)
}

// ListPartnerRevenues godoc
// @ID          listPartnerRevenues
// @Summary     List revenue entries of one partner
// @Description Returns the ledger entries of a single partner, newest first.
// @Tags        Revenues
// @Produce     json
// @Security    BearerAuth
//
// @Param       partner_id  path   int  true  "Partner user id"  example(7)
// @Param       page        query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size   query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListRevenuesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /revenues/{partner_id} [get]
func (h *Handlers) ListPartnerRevenues(c *gin.Context) {
	partnerID, good := pathID(c, "partner_id")
	if !good {
		return
	}
	h.listRevenues(c, partnerID)
}

func (h *Handlers) listRevenues(c *gin.Context, partnerID uint) {
	page, pageSize := clampPagination(c)
	items, total, err := h.revenue.List(c.Request.Context(), partnerID, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListRevenuesResponse{Revenues: items, Pagination: newPagination(page, pageSize, total)})
}

// RecordRevenue godoc
// @ID          recordRevenue
// @Summary     Record partner revenue
// @Description Appends an entry to the revenue ledger.
// @Description Supports idempotency via the Idempotency-Key header (same key → same entry).
// @Tags        Revenues
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.RecordRevenueRequest  true  "Revenue entry"
//
// @Success     201  {object}  domain.PartnerRevenue
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /revenues [post]
func (h *Handlers) RecordRevenue(c *gin.Context) {
	ctx := c.Request.Context()

	if rec := h.previous(c); rec != nil {
		if prev, err := h.revenue.Get(ctx, rec.ResourceID); err == nil {
			c.Header(HeaderReplayed, "true")
			ok(c, rec.Status, prev)
			return
		}
	}

	var req RecordRevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "partner_id and amount required")
		return
	}

	r, err := h.revenue.Record(ctx, services.RevenueInput{
		PartnerID:       req.PartnerID,
		Amount:          req.Amount,
		Description:     req.Description,
		ClientReference: req.ClientReference,
	})
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	h.remember(c, r.ID, http.StatusCreated)
	ok(c, http.StatusCreated, r)
}
