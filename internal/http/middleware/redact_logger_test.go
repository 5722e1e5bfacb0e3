package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)

	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Set(ctxKeyStaff, "alice")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/dialogs/:telegram_id/messages", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+7-915-123-4567&id=123e4567-e89b-12d3-a456-426614174000" +
		"&token=123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1"
	req := httptest.NewRequest(http.MethodGet, "/dialogs/555/messages?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/dialogs/:telegram_id/messages"`,
		`"request_id":"rid-resp"`,
		`"staff_id":"alice"`,
		`[REDACTED:email]`,
		`[REDACTED:phone]`,
		`[REDACTED:id]`,
		`token=[REDACTED:token]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in: %s", want, logs)
		}
	}
	if strings.Contains(logs, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1") || strings.Contains(logs, "/dialogs/555") {
		t.Fatalf("raw values leaked: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels_RequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	buf := withCapturedLogger(t)

	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set("X-Request-ID", "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set("X-Request-ID", "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log not found or missing request_id fallback: %s", logs)
	}
	if !strings.Contains(logs, `"staff_id":""`) {
		t.Fatalf("anonymous requests log an empty staff_id: %s", logs)
	}
}

func TestScrub(t *testing.T) {
	cases := map[string]string{
		"":                                         "",
		"status=new&page=2":                        "status=new&page=2",
		"mail ivan@law.example":                    "mail [REDACTED:email]",
		"call 8 915 123-4567":                      "call [REDACTED:phone]",
		"bot 987654321:" + strings.Repeat("x", 35): "bot [REDACTED:token]",
	}
	for in, want := range cases {
		if got := scrub(in); got != want {
			t.Fatalf("scrub(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRedactingLogger_HandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)
	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/cases", func(c *gin.Context) {
		_ = c.Error(errors.New("notify partners: chat not found"))
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))

	logs := buf.String()
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "chat not found") {
		t.Fatalf("attached errors must escalate the line: %s", logs)
	}
}
