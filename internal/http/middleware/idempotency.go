package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey carries the client's key on unsafe requests.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderReplayed marks a response served from an earlier request with
	// the same key.
	HeaderReplayed = "Idempotency-Replayed"
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var (
	defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~:-]+$`)
	apiVersionSegment = regexp.MustCompile(`^v[0-9]+$`)
)

// GetIdempotencyKey returns the key validated by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a stored result already exists for this
// request's (staff, scope, key).
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyOptions configures IdempotencyValidator. Record expiry belongs
// to the lookup, not the middleware.
type IdempotencyOptions struct {
	MaxLen  int            // default 200
	Pattern *regexp.Regexp // default ^[A-Za-z0-9._~:-]+$
	Now     func() time.Time
}

// IdempotencyLookup reports whether a live record exists. Errors are logged
// and the request proceeds as a first attempt.
type IdempotencyLookup func(ctx context.Context, actor, scope, key string, now time.Time) (bool, error)

// IdempotencyScope namespaces keys by operation: the literal segments of the
// matched route minus the API prefix, so "/api/v1/payouts/:id/pay" becomes
// "payouts/pay".
func IdempotencyScope(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	var segs []string
	for _, s := range strings.Split(route, "/") {
		if s != "" && s[0] != ':' && s[0] != '*' {
			segs = append(segs, s)
		}
	}
	for len(segs) > 1 && (segs[0] == "api" || apiVersionSegment.MatchString(segs[0])) {
		segs = segs[1:]
	}
	return strings.Join(segs, "/")
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// IdempotencyValidator checks the Idempotency-Key of unsafe requests and
// stashes it for handlers. A malformed key is rejected with 400. When lookup
// finds a prior result the request is flagged as a replay, which also exempts
// it from rate limiting. Serving the stored result is left to the handler.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	if opts.MaxLen <= 0 {
		opts.MaxLen = 200
	}
	if opts.Pattern == nil {
		opts.Pattern = defaultKeyPattern
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > opts.MaxLen || !opts.Pattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": requestID(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid " + HeaderIdempotencyKey,
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			scope := IdempotencyScope(c)
			found, err := lookup(c.Request.Context(), StaffID(c), scope, key, opts.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			case found:
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
