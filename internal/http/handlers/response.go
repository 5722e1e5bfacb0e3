package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/lawdesk/internal/http/middleware"
)

// ErrorResponse is the error envelope of every admin API endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching a failure to server logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"case not found"`
}

// fail aborts with an ErrorResponse.
func fail(c *gin.Context, status int, code, msg string) {
	failCause(c, status, code, msg, nil)
}

// failCause is fail with the underlying error attached to the server log.
// Only 5xx responses are logged; the cause never reaches the client.
func failCause(c *gin.Context, status int, code, msg string, cause error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().Int("status", status).Str("code", code)
		if cause != nil {
			ev = ev.Err(cause)
		}
		ev.Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

// Fail writes an ErrorResponse from outside the package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
