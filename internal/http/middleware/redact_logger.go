package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// scrubbers run in order: bot tokens and UUIDs go before the loose phone
// pattern, which would otherwise claim their digit runs.
var scrubbers = []struct {
	re   *regexp.Regexp
	mark string
}{
	{regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}`), "[REDACTED:token]"},
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// alwaysMasked headers are replaced wholesale, never scrubbed.
var alwaysMasked = []string{"authorization", "cookie", "set-cookie"}

func scrub(s string) string {
	for _, sc := range scrubbers {
		if s == "" {
			break
		}
		s = sc.re.ReplaceAllString(s, sc.mark)
	}
	return s
}

// RedactOptions adds header names (case-insensitive) to mask on top of
// Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger is the admin API access log. It installs the
// request-scoped logger, then writes one "http_request" line per request
// with the query and headers scrubbed of contact details, ids and bot
// tokens. Bodies are never logged. Level follows the status: warn for 4xx,
// error for 5xx or when handlers attached errors.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := make(map[string]bool, len(alwaysMasked)+len(opts.MaskHeaders))
	for _, h := range append(alwaysMasked, opts.MaskHeaders...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = true
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		lg := attachLogger(c, route)

		query := scrub(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := make(map[string]string, len(c.Request.Header))
		for name, values := range c.Request.Header {
			if masked[strings.ToLower(name)] {
				headers[name] = "[REDACTED]"
			} else {
				headers[name] = scrub(strings.Join(values, ", "))
			}
		}

		c.Next()

		status := c.Writer.Status()
		ev := lg.Info()
		if status >= 500 || len(c.Errors) > 0 {
			ev = lg.Error()
		} else if status >= 400 {
			ev = lg.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("staff_id", c.GetString(ctxKeyStaff)).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
