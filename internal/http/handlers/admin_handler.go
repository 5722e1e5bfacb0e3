// Back-office query endpoints.
//
// This file exposes read-only REST endpoints over users and referrals:
//   - GET /partners
//   - GET /users                            (paginated, search)
//   - GET /users/referrals                  (paginated, search)
//   - GET /referrers
//   - GET /referrals/structure
//   - GET /referrals/referrer/{telegram_id}
//   - GET /stats
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

//
// DTOs
//

// ListPartnersResponse wraps the partners with their profiles.
type ListPartnersResponse struct {
	Partners []domain.User `json:"partners"`
}

// ListUsersResponse wraps a page of users and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// ListUserReferralsResponse wraps a page of users with referral info.
type ListUserReferralsResponse struct {
	Users      []services.UserReferralInfo `json:"users"`
	Pagination Pagination                  `json:"pagination"`
}

// ListReferrersResponse wraps referrers with their referral counts.
type ListReferrersResponse struct {
	Referrers []repo.ReferrerRow `json:"referrers"`
}

// ReferralStructureResponse wraps the referral tree.
type ReferralStructureResponse struct {
	Structure []services.ReferralNode `json:"structure"`
}

// ReferrerResponse names who referred a user.
type ReferrerResponse struct {
	TelegramID int64        `json:"telegram_id" example:"123456789"`
	Referrer   *domain.User `json:"referrer"`
}

//
// Handlers
//

// ListPartners godoc
// @ID          listPartners
// @Summary     List partners
// @Description Returns every user that has filled in a partner profile, newest first.
// @Tags        Partners
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListPartnersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partners [get]
func (h *Handlers) ListPartners(c *gin.Context) {
	items, err := h.admin.Partners(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListPartnersResponse{Partners: items})
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users (paginated)
// @Description Returns a page of users. search matches username, first and last name case-insensitively.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       search     query  string  false "Substring to search for"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListUsersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	search := strings.TrimSpace(c.Query("search"))

	items, total, err := h.admin.Users(c.Request.Context(), search, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: items, Pagination: newPagination(page, pageSize, total)})
}

// ListUserReferrals godoc
// @ID          listUserReferrals
// @Summary     List users with referral info
// @Description Returns a page of users with their referrer, invitation code and number of referred users.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       search     query  string  false "Substring to search for"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListUserReferralsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/referrals [get]
func (h *Handlers) ListUserReferrals(c *gin.Context) {
	page, pageSize := clampPagination(c)
	search := strings.TrimSpace(c.Query("search"))

	items, total, err := h.admin.UsersWithReferrals(c.Request.Context(), search, page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListUserReferralsResponse{Users: items, Pagination: newPagination(page, pageSize, total)})
}

// ListReferrers godoc
// @ID          listReferrers
// @Summary     List referrers
// @Description Returns every user with at least one referral, most referrals first.
// @Tags        Referrals
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListReferrersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrers [get]
func (h *Handlers) ListReferrers(c *gin.Context) {
	items, err := h.admin.Referrers(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListReferrersResponse{Referrers: items})
}

// ReferralStructure godoc
// @ID          referralStructure
// @Summary     Referral tree
// @Description Returns each referrer with the users they referred.
// @Tags        Referrals
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ReferralStructureResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrals/structure [get]
func (h *Handlers) ReferralStructure(c *gin.Context) {
	nodes, err := h.admin.ReferralStructure(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ReferralStructureResponse{Structure: nodes})
}

// GetReferrer godoc
// @ID          getReferrer
// @Summary     Who referred a user
// @Description Returns the partner whose invitation link the user followed.
// @Tags        Referrals
// @Produce     json
// @Security    BearerAuth
//
// @Param       telegram_id  path  int  true  "Telegram id of the referred user"  example(123456789)
//
// @Success     200  {object}  handlers.ReferrerResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "User or referrer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /referrals/referrer/{telegram_id} [get]
func (h *Handlers) GetReferrer(c *gin.Context) {
	tgID, good := pathTelegramID(c)
	if !good {
		return
	}
	u, err := h.admin.ReferrerOf(c.Request.Context(), tgID)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ReferrerResponse{TelegramID: tgID, Referrer: u})
}

// GetStats godoc
// @ID          getStats
// @Summary     Dashboard counters
// @Description Returns counts of users, partners, referrals, cases, unread messages, revenue and payouts.
// @Tags        Stats
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.Stats
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	st, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, st)
}
