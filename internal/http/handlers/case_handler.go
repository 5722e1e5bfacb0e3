// Case HTTP handlers.
//
// This file exposes REST endpoints for submitted questionnaires:
//   - GET  /cases                 (status filter, paginated)
//   - GET  /cases/search          (ranked by answer text)
//   - GET  /cases/{id}            (with documents)
//   - PUT  /cases/{id}/status     (status transition)
//   - GET  /cases/{id}/messages   (case thread, marks client messages read)
//   - POST /cases/{id}/messages   (staff reply to the case owner)
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/http/middleware"
	"github.com/tbourn/lawdesk/internal/services"
)

//
// DTOs
//

// UpdateCaseStatusRequest is the JSON payload for a status transition.
type UpdateCaseStatusRequest struct {
	Status string `json:"status" binding:"required" enums:"new,in_progress,completed,rejected" example:"in_progress"`
}

// ListCasesResponse wraps a page of questionnaires.
type ListCasesResponse struct {
	Cases      []domain.CaseQuestionnaire `json:"cases"`
	Pagination Pagination                 `json:"pagination"`
}

// SearchCasesResponse wraps ranked search hits.
type SearchCasesResponse struct {
	Query string             `json:"query" example:"lease deposit"`
	Hits  []services.CaseHit `json:"hits"`
}

// CaseMessagesResponse wraps a case thread.
type CaseMessagesResponse struct {
	CaseID   uint                 `json:"case_id" example:"5"`
	Messages []domain.CaseMessage `json:"messages"`
}

// ContentRequest is the JSON payload carrying a message body.
type ContentRequest struct {
	Content string `json:"content" binding:"required" example:"We have reviewed your documents."`
}

// StaffMessageResponse reports a stored staff message and whether the
// client received it.
type StaffMessageResponse struct {
	Message   *domain.CaseMessage `json:"message"`
	Delivered bool                `json:"delivered" example:"true"`
}

//
// Handlers
//

// ListCases godoc
// @ID          listCases
// @Summary     List cases (paginated)
// @Description Returns submitted questionnaires, newest first, optionally filtered by status.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       status     query  string  false "Status"  Enums(new, in_progress, completed, rejected)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListCasesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases [get]
func (h *Handlers) ListCases(c *gin.Context) {
	page, pageSize := clampPagination(c)
	status := strings.TrimSpace(c.Query("status"))

	items, total, err := h.cases.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListCasesResponse{Cases: items, Pagination: newPagination(page, pageSize, total)})
}

// SearchCases godoc
// @ID          searchCases
// @Summary     Search cases
// @Description Ranks cases by word overlap between q and their answers. Each hit carries the best-matching answer.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       q       query  string  true  "Search text"  example(lease deposit)
// @Param       status  query  string  false "Status"  Enums(new, in_progress, completed, rejected)
// @Param       limit   query  int     false "Max hits"  minimum(1) maximum(50) default(10)
//
// @Success     200  {object}  handlers.SearchCasesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases/search [get]
func (h *Handlers) SearchCases(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 50)
	}

	hits, err := h.cases.Search(c.Request.Context(), q, strings.TrimSpace(c.Query("status")), limit)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	if hits == nil {
		hits = []services.CaseHit{}
	}
	ok(c, http.StatusOK, SearchCasesResponse{Query: q, Hits: hits})
}

// GetCase godoc
// @ID          getCase
// @Summary     Get a case
// @Description Returns one questionnaire with its documents.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Case id"  example(5)
//
// @Success     200  {object}  domain.CaseQuestionnaire
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Case not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases/{id} [get]
func (h *Handlers) GetCase(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	q, err := h.cases.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, q)
}

// UpdateCaseStatus godoc
// @ID          updateCaseStatus
// @Summary     Change case status
// @Description Moves a case along new → in_progress → completed; new and in_progress cases can be rejected.
// @Description The client is notified of the change.
// @Tags        Cases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int  true  "Case id"  example(5)
// @Param       body  body  handlers.UpdateCaseStatusRequest  true  "Target status"
//
// @Success     200  {object}  domain.CaseQuestionnaire
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Case not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Transition not allowed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases/{id}/status [put]
func (h *Handlers) UpdateCaseStatus(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	var req UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	q, err := h.cases.UpdateStatus(c.Request.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, q)
}

// ListCaseMessages godoc
// @ID          listCaseMessages
// @Summary     Case thread
// @Description Returns the messages filed under a case, oldest first, and marks client messages read.
// @Tags        Cases
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Case id"  example(5)
//
// @Success     200  {object}  handlers.CaseMessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Case not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases/{id}/messages [get]
func (h *Handlers) ListCaseMessages(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	items, err := h.messages.CaseThread(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, CaseMessagesResponse{CaseID: id, Messages: items})
}

// PostCaseMessage godoc
// @ID          postCaseMessage
// @Summary     Reply on a case
// @Description Stores a staff message under the case and delivers it to the case owner.
// @Description A failed delivery keeps the message and reports delivered=false.
// @Tags        Cases
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int  true  "Case id"  example(5)
// @Param       body  body  handlers.ContentRequest  true  "Message"
//
// @Success     201  {object}  handlers.StaffMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Case not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases/{id}/messages [post]
func (h *Handlers) PostCaseMessage(c *gin.Context) {
	id, good := pathID(c, "id")
	if !good {
		return
	}
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	h.postStaff(c, services.StaffMessage{CaseID: id, Text: req.Content})
}

// postStaff stores and delivers a staff message on behalf of the caller.
func (h *Handlers) postStaff(c *gin.Context, in services.StaffMessage) {
	in.StaffID = middleware.StaffID(c)
	m, delivered, err := h.messages.PostStaffMessage(c.Request.Context(), in)
	if err != nil {
		failService(c, err, ErrCodeSendFailed)
		return
	}
	ok(c, http.StatusCreated, StaffMessageResponse{Message: m, Delivered: delivered})
}
