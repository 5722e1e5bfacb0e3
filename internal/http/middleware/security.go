package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
//
// PrivatePrefixes lists path prefixes whose responses carry client data
// (cases, phones, payouts) and must never be cached by browsers or proxies.
// HSTS is sent only on HTTPS requests and only when EnableHSTS is set.
type SecurityOptions struct {
	EnableHSTS      bool
	HSTSMaxAge      time.Duration // default 180 days
	PrivatePrefixes []string
}

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityHeaders hardens every response of the admin API:
//
//	X-Content-Type-Options: nosniff
//	X-Frame-Options: DENY
//	Referrer-Policy: no-referrer
//	Permissions-Policy: geolocation=(), microphone=(), camera=(), payment=()
//	X-Permitted-Cross-Domain-Policies: none
//
// Responses under a private prefix also get Cache-Control: no-store, private
// (plus the legacy Pragma and Expires pair).
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge/time.Second)) + "; includeSubDomains"

	prefixes := make([]string, 0, len(opt.PrivatePrefixes))
	for _, p := range opt.PrivatePrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")

		if isPrivatePath(c.Request.URL.Path, prefixes) {
			h.Set("Cache-Control", "no-store, private")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// isPrivatePath matches whole path segments, so "/api" covers "/api" and
// "/api/cases" but not "/apidocs".
func isPrivatePath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "/" {
			return true
		}
		p = strings.TrimRight(p, "/")
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// isHTTPS reports whether the request arrived over TLS, directly or through
// a proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
