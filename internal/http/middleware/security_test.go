package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityEngine(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/cases/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/apidocs", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler, path string, mut func(*http.Request)) http.Header {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mut != nil {
		mut(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := get(securityEngine(SecurityOptions{}), "/health", nil)
	want := map[string]string{
		"X-Content-Type-Options":            "nosniff",
		"X-Frame-Options":                   "DENY",
		"Referrer-Policy":                   "no-referrer",
		"X-Permitted-Cross-Domain-Policies": "none",
	}
	for k, v := range want {
		if h.Get(k) != v {
			t.Fatalf("%s = %q, want %q", k, h.Get(k), v)
		}
	}
	if h.Get("Permissions-Policy") == "" {
		t.Fatalf("Permissions-Policy missing")
	}
	if h.Get("Cache-Control") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("unexpected optional headers: %#v", h)
	}
}

func TestSecurityHeaders_PrivatePrefixes(t *testing.T) {
	r := securityEngine(SecurityOptions{PrivatePrefixes: []string{" /api/ ", ""}})

	h := get(r, "/api/cases/5", nil)
	if h.Get("Cache-Control") != "no-store, private" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("client data must not be cached: %#v", h)
	}
	if h := get(r, "/apidocs", nil); h.Get("Cache-Control") != "" {
		t.Fatalf("prefix must match whole segments, got %q", h.Get("Cache-Control"))
	}
	if h := get(r, "/health", nil); h.Get("Cache-Control") != "" {
		t.Fatalf("public path got cache headers")
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	r := securityEngine(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour})

	if h := get(r, "/health", nil); h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS over plain HTTP")
	}
	h := get(r, "/health", func(req *http.Request) { req.TLS = &tls.ConnectionState{} })
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains" {
		t.Fatalf("HSTS = %q", got)
	}

	def := securityEngine(SecurityOptions{EnableHSTS: true})
	h = get(def, "/health", func(req *http.Request) { req.Header.Set("X-Forwarded-Proto", "HTTPS") })
	if got := h.Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains" {
		t.Fatalf("default HSTS = %q", got)
	}
}

func TestIsPrivatePath(t *testing.T) {
	cases := []struct {
		path     string
		prefixes []string
		want     bool
	}{
		{"/api", []string{"/api"}, true},
		{"/api/payouts", []string{"/api"}, true},
		{"/apix", []string{"/api"}, false},
		{"/anything", []string{"/"}, true},
		{"/health", nil, false},
	}
	for _, c := range cases {
		if got := isPrivatePath(c.path, c.prefixes); got != c.want {
			t.Fatalf("isPrivatePath(%q, %v) = %v", c.path, c.prefixes, got)
		}
	}
}
