// Package httpapi wires the HTTP transport (Gin) of the admin back office to
// application services, middleware, and route handlers. It centralizes
// cross-cutting concerns such as tracing, correlation IDs, logging/redaction,
// panic recovery, metrics, CORS, security headers, staff authentication,
// idempotency, and rate limiting.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/docs"
	"github.com/tbourn/lawdesk/internal/config"
	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/http/handlers"
	"github.com/tbourn/lawdesk/internal/http/middleware"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/services"
)

// idempotencyRepo adapts the repository free functions to
// handlers.IdempotencyStore.
type idempotencyRepo struct{ db *gorm.DB }

// Get proxies repo.GetIdempotency; a missing record is (nil, nil).
func (r idempotencyRepo) Get(ctx context.Context, actor, scope, key string, now time.Time) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, r.db, actor, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// Create proxies repo.CreateIdempotency.
func (r idempotencyRepo) Create(ctx context.Context, actor, scope, key string, resourceID uint, status int, ttl time.Duration) error {
	_, err := repo.CreateIdempotency(ctx, r.db, actor, scope, key, resourceID, status, ttl)
	return err
}

// exists is the middleware lookup: lookup failures never block a request.
func (r idempotencyRepo) exists(ctx context.Context, actor, scope, key string, now time.Time) (bool, error) {
	rec, err := r.Get(ctx, actor, scope, key, now)
	return rec != nil, err
}

// broadcastCost is the token price of one broadcast request.
const broadcastCost = 5

// requestCost charges fan-out requests more: a broadcast messages every
// active user.
func requestCost(c *gin.Context) int {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/broadcast") {
		return broadcastCost
	}
	return 1
}

// dialogsStamp fingerprints the message table for the dialog-list ETag.
func dialogsStamp(db *gorm.DB) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		count, unread, newest, err := repo.MessagesStamp(ctx, db)
		if err != nil {
			return "", err
		}
		var ts int64
		if newest != nil {
			ts = newest.UnixNano()
		}
		return fmt.Sprintf("%d:%d:%d", count, unread, ts), nil
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the admin API under cfg.APIBasePath. n delivers staff
// replies, broadcasts and status notifications to Telegram users.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter, gzip
//  6. Metrics
//  7. CORS and Security headers
//
// and on the API group:
//  8. StaffAuth (the actor for everything below)
//  9. Idempotency validator (before rate limiter to allow bypass on replay)
//  10. Rate limiter (per staff member/IP, bypass on replay)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, n notify.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Authorization"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", handlers.HeaderReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		PrivatePrefixes: []string{cfg.APIBasePath},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/notifier
	idem := idempotencyRepo{db: db}
	h := handlers.New(handlers.Deps{
		Admin:   &services.AdminService{DB: db},
		Revenue: &services.RevenueService{DB: db},
		Payouts: &services.PayoutService{DB: db},
		Cases:   &services.QuestionnaireService{DB: db, Notifier: n},
		Messages: &services.MessagingService{
			DB:          db,
			Notifier:    n,
			StaffChatID: cfg.Bot.AdminChatID,
			MaxRunes:    cfg.MaxMessageRunes,
		},
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL,
		DialogsStamp:   dialogsStamp(db),
	})

	// Admin API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.StaffAuth(middleware.AuthOptions{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		Leeway: cfg.Auth.Leeway,
	}))
	api.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.exists))
	rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
		Key:   middleware.KeyByStaffOrIP(),
		Cost:  requestCost,
	})
	api.Use(rl.Handler())
	{
		// Partners, users, referrals
		api.GET("/partners", h.ListPartners)
		api.GET("/users", h.ListUsers)
		api.GET("/users/referrals", h.ListUserReferrals)
		api.GET("/referrers", h.ListReferrers)
		api.GET("/referrals/structure", h.ReferralStructure)
		api.GET("/referrals/referrer/:telegram_id", h.GetReferrer)
		api.GET("/stats", h.GetStats)

		// Revenue ledger
		api.GET("/revenues", h.ListRevenues)
		api.POST("/revenues", h.RecordRevenue)
		api.GET("/revenues/:partner_id", h.ListPartnerRevenues)

		// Payouts
		api.GET("/payouts", h.ListPayouts)
		api.GET("/payouts/count", h.CountPayouts)
		api.POST("/payouts", h.CreatePayout)
		api.POST("/payouts/generate", h.GeneratePayouts)
		api.PUT("/payouts/batch/pay", h.BatchMarkPaid)
		api.PUT("/payouts/:id", h.UpdatePayout)
		api.PUT("/payouts/:id/pay", h.MarkPayoutPaid)

		// Cases
		api.GET("/cases", h.ListCases)
		api.GET("/cases/search", h.SearchCases)
		api.GET("/cases/:id", h.GetCase)
		api.PUT("/cases/:id/status", h.UpdateCaseStatus)
		api.GET("/cases/:id/messages", h.ListCaseMessages)
		api.POST("/cases/:id/messages", h.PostCaseMessage)

		// Messaging
		api.POST("/messages/dialog", h.PostDialogMessage)
		api.POST("/messages/direct", h.PostDirectMessage)
		api.GET("/dialogs", h.ListDialogs)
		api.GET("/dialogs/:telegram_id/messages", h.ListDialogMessages)
		api.POST("/dialogs/:telegram_id/send", h.SendDialogMessage)
		api.POST("/broadcast", h.Broadcast)
		api.POST("/notify", h.Notify)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
