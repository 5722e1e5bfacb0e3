package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/services"
)

// Error codes carried in ErrorResponse.Code. Clients branch on these, never
// on the message.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Operation-scoped 5xx codes, chosen by the handler as the fallback.
	ErrCodeCreateFailed = "create_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeUpdateFailed = "update_failed"
	ErrCodeSendFailed   = "send_failed"
)

// serviceErr binds a group of service sentinels to one HTTP status and code.
type serviceErr struct {
	status int
	code   string
	errs   []error
}

// serviceErrs is checked in order; the first group with a match wins.
var serviceErrs = []serviceErr{
	{http.StatusNotFound, ErrCodeNotFound, []error{
		services.ErrUserNotFound,
		services.ErrProfileNotFound,
		services.ErrCaseNotFound,
		services.ErrPayoutNotFound,
		services.ErrRevenueNotFound,
		services.ErrUnknownReferralCode,
	}},
	{http.StatusBadRequest, ErrCodeBadRequest, []error{
		services.ErrEmptyMessage,
		services.ErrMessageTooLong,
		services.ErrNoTarget,
		services.ErrInvalidRevenue,
		services.ErrInvalidPayout,
		services.ErrInvalidStatus,
		services.ErrEmptyBatch,
		services.ErrNotReady,
		services.ErrInvalidPeriod,
		services.ErrEmptyQuery,
	}},
	{http.StatusConflict, ErrCodeConflict, []error{
		services.ErrPayoutAlreadyPaid,
		services.ErrPayoutCancelled,
		services.ErrSelfReferral,
		services.ErrAlreadyReferred,
		services.ErrInvalidStatusTransition,
	}},
}

// classify returns the status and code for a known service error.
func classify(err error) (int, string, bool) {
	for _, g := range serviceErrs {
		for _, target := range g.errs {
			if errors.Is(err, target) {
				return g.status, g.code, true
			}
		}
	}
	return 0, "", false
}

// failService maps a service error onto the HTTP error taxonomy. Known
// sentinels keep their message; anything else is logged and answered with a
// generic 5xx carrying fallbackCode.
func failService(c *gin.Context, err error, fallbackCode string) {
	if status, code, known := classify(err); known {
		fail(c, status, code, err.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		failCause(c, http.StatusGatewayTimeout, ErrCodeInternal, "request timed out", err)
		return
	}
	failCause(c, http.StatusInternalServerError, fallbackCode, "internal error", err)
}
