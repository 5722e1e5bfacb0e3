// Message HTTP handlers.
//
// This file exposes REST endpoints for the staff/client messaging relay:
//   - POST /messages/dialog                   (client message by telegram id)
//   - POST /messages/direct                   (staff message by telegram id)
//   - GET  /dialogs                           (dialog list, ETag support)
//   - GET  /dialogs/{telegram_id}/messages    (thread, marks client messages read)
//   - POST /dialogs/{telegram_id}/send        (staff message)
//   - POST /broadcast                         (message every partner or a list)
//   - POST /notify                            (raw relay, not stored)
package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

//
// DTOs
//

// DialogMessageRequest is the JSON payload for a message on behalf of a
// client (e.g. relayed from another channel).
type DialogMessageRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required" example:"123456789"`
	Content    string `json:"content" binding:"required" example:"Is there any news on my case?"`
}

// DirectMessageRequest is the JSON payload for a staff message addressed by
// telegram id.
type DirectMessageRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required" example:"123456789"`
	Content    string `json:"content" binding:"required" example:"Please send the signed contract."`
}

// BroadcastRequest is the JSON payload for a broadcast. An empty TelegramIDs
// list targets every active partner.
type BroadcastRequest struct {
	Message     string  `json:"message" binding:"required" example:"The office is closed on Monday."`
	TelegramIDs []int64 `json:"telegram_ids,omitempty"`
}

// NotifyRequest is the JSON payload for a raw notification.
type NotifyRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required" example:"123456789"`
	Message    string `json:"message" binding:"required" example:"Your payout has been sent."`
}

// NotifyResponse reports whether a notification reached the chat.
type NotifyResponse struct {
	Delivered bool `json:"delivered" example:"true"`
}

// ListDialogsResponse wraps the dialog list.
type ListDialogsResponse struct {
	Dialogs []repo.DialogRow `json:"dialogs"`
}

// ThreadResponse wraps a page of one user's thread.
type ThreadResponse struct {
	TelegramID int64                `json:"telegram_id" example:"123456789"`
	Messages   []domain.CaseMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes message text:
//   - converts CRLF/CR to LF
//   - collapses runs of 3+ LFs to exactly two (paragraph separation)
//   - trims surrounding whitespace
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

//
// Handlers
//

// PostDialogMessage godoc
// @ID          postDialogMessage
// @Summary     Store a client message
// @Description Files a message from a client under their latest case (or the general bucket) and mirrors it to staff.
// @Description Unknown telegram ids get a placeholder user.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.DialogMessageRequest  true  "Client message"
//
// @Success     201  {object}  domain.CaseMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/dialog [post]
func (h *Handlers) PostDialogMessage(c *gin.Context) {
	var req DialogMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "telegram_id and content required")
		return
	}
	m, err := h.messages.PostClientMessage(c.Request.Context(), services.ClientMessage{
		TelegramID: req.TelegramID,
		Text:       sanitizeContent(req.Content),
	})
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, m)
}

// PostDirectMessage godoc
// @ID          postDirectMessage
// @Summary     Message a client
// @Description Stores a staff message in the client's thread and delivers it.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.DirectMessageRequest  true  "Staff message"
//
// @Success     201  {object}  handlers.StaffMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/direct [post]
func (h *Handlers) PostDirectMessage(c *gin.Context) {
	var req DirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "telegram_id and content required")
		return
	}
	h.postStaff(c, services.StaffMessage{TelegramID: req.TelegramID, Text: sanitizeContent(req.Content)})
}

// ListDialogs godoc
// @ID          listDialogs
// @Summary     List dialogs
// @Description Returns one row per client with the last message and the unread count, latest first.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"dialogs:10:2:1700000000\")
//
// @Success     200  {object}  handlers.ListDialogsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dialogs [get]
func (h *Handlers) ListDialogs(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if h.stamp != nil {
		if tag, err := h.stamp(ctx); err == nil && tag != "" {
			etag := `W/"dialogs:` + tag + `"`
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.messages.Dialogs(ctx)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListDialogsResponse{Dialogs: items})
}

// ListDialogMessages godoc
// @ID          listDialogMessages
// @Summary     Client thread
// @Description Returns a page of a client's whole thread, oldest first, and marks their messages read.
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
//
// @Param       telegram_id  path   int  true  "Client telegram id"  example(123456789)
// @Param       page         query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size    query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ThreadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dialogs/{telegram_id}/messages [get]
func (h *Handlers) ListDialogMessages(c *gin.Context) {
	tgID, good := pathTelegramID(c)
	if !good {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.messages.Thread(c.Request.Context(), tgID, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ThreadResponse{
		TelegramID: tgID,
		Messages:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// SendDialogMessage godoc
// @ID          sendDialogMessage
// @Summary     Reply in a dialog
// @Description Stores a staff message in the client's thread and delivers it.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       telegram_id  path  int  true  "Client telegram id"  example(123456789)
// @Param       body         body  handlers.ContentRequest  true  "Message"
//
// @Success     201  {object}  handlers.StaffMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dialogs/{telegram_id}/send [post]
func (h *Handlers) SendDialogMessage(c *gin.Context) {
	tgID, good := pathTelegramID(c)
	if !good {
		return
	}
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	h.postStaff(c, services.StaffMessage{TelegramID: tgID, Text: sanitizeContent(req.Content)})
}

// Broadcast godoc
// @ID          broadcast
// @Summary     Broadcast a message
// @Description Sends the message to the listed users or, when none are given, to every active partner.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.BroadcastRequest  true  "Broadcast"
//
// @Success     200  {object}  services.BroadcastResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /broadcast [post]
func (h *Handlers) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message required")
		return
	}
	res, err := h.messages.Broadcast(c.Request.Context(), sanitizeContent(req.Message), req.TelegramIDs)
	if err != nil {
		failService(c, err, ErrCodeSendFailed)
		return
	}
	ok(c, http.StatusOK, res)
}

// Notify godoc
// @ID          notify
// @Summary     Send a raw notification
// @Description Relays the message to one chat without storing it.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.NotifyRequest  true  "Notification"
//
// @Success     200  {object}  handlers.NotifyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /notify [post]
func (h *Handlers) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "telegram_id and message required")
		return
	}
	delivered, err := h.messages.Notify(c.Request.Context(), req.TelegramID, req.Message)
	if err != nil {
		failService(c, err, ErrCodeSendFailed)
		return
	}
	ok(c, http.StatusOK, NotifyResponse{Delivered: delivered})
}
