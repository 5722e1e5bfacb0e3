// Package config provides application configuration loaded from environment
// variables with defaults and validation. It covers the admin HTTP server,
// the Telegram bot, storage, sessions, reminders, staff authentication,
// outbound mail and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the database. Path is used by sqlite, DSN by postgres.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH
	DSN    string // DATABASE_URL
}

// Source returns the driver-specific connection string.
func (d DBConfig) Source() string {
	if d.Driver == "postgres" {
		return d.DSN
	}
	return d.Path
}

// BotConfig configures the Telegram bot.
type BotConfig struct {
	Token          string  // BOT_TOKEN
	AdminChatID    int64   // ADMIN_CHAT_ID: staff chat for new users and support messages
	PartnersChatID int64   // PARTNERS_CHAT_ID: cases, documents and partner profiles; defaults to ADMIN_CHAT_ID
	URL            string  // BOT_URL, e.g. https://t.me/lawdesk_bot
	Workers        int     // BOT_WORKERS
	PollTimeout    int     // BOT_POLL_TIMEOUT seconds
	ThrottleRPS    float64 // BOT_THROTTLE_RPS per user
	ThrottleBurst  int     // BOT_THROTTLE_BURST
	Debug          bool    // BOT_DEBUG
}

// UploadConfig configures attachment storage.
type UploadConfig struct {
	Dir         string   // UPLOAD_DIR
	MaxFileSize int64    // MAX_FILE_SIZE bytes
	Extensions  []string // UPLOAD_EXTENSIONS
}

// SessionConfig selects where in-progress forms are kept.
type SessionConfig struct {
	Backend       string        // SESSION_BACKEND: memory|redis
	RedisAddr     string        // REDIS_ADDR
	RedisDB       int           // REDIS_DB
	RedisPassword string        // REDIS_PASSWORD
	TTL           time.Duration // SESSION_TTL (redis only)
}

// ReminderConfig configures the profile reminder sweep.
type ReminderConfig struct {
	Delay       time.Duration // REMINDER_DELAY
	Interval    time.Duration // REMINDER_INTERVAL
	MaxAttempts int           // REMINDER_MAX_ATTEMPTS
}

// AuthConfig configures staff JWT authentication. An empty secret disables it.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET
	Issuer    string        // JWT_ISSUER
	TokenTTL  time.Duration // JWT_TTL
	Leeway    time.Duration // JWT_LEEWAY
}

// Enabled reports whether tokens are required.
func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// MailConfig configures the e-mail copy of staff notifications.
type MailConfig struct {
	Host     string // SMTP_HOST
	Port     int    // SMTP_PORT
	User     string // SMTP_USER
	Password string // SMTP_PASSWORD
	From     string // MAIL_FROM
	To       string // STAFF_EMAIL
}

// Enabled reports whether SMTP delivery is configured.
func (m MailConfig) Enabled() bool { return m.Host != "" && m.To != "" }

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB      DBConfig
	Uploads UploadConfig

	// Conversational front end
	Bot             BotConfig
	Session         SessionConfig
	Reminder        ReminderConfig
	MaxMessageRunes int // MAX_MESSAGE_RUNES

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig
	Auth     AuthConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	Mail MailConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Storage
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(getenv("DB_DRIVER", "sqlite"))),
			Path:   getenv("DB_PATH", "lawdesk.db"),
			DSN:    getenv("DATABASE_URL", ""),
		},
		Uploads: UploadConfig{
			Dir:         getenv("UPLOAD_DIR", "uploads"),
			MaxFileSize: getint64("MAX_FILE_SIZE", 20<<20),
			Extensions:  splitCSV(getenv("UPLOAD_EXTENSIONS", "pdf,jpg,jpeg,png,doc,docx")),
		},

		// Bot
		Bot: BotConfig{
			Token:          getenv("BOT_TOKEN", ""),
			AdminChatID:    getint64("ADMIN_CHAT_ID", 0),
			PartnersChatID: getint64("PARTNERS_CHAT_ID", 0),
			URL:            strings.TrimRight(getenv("BOT_URL", ""), "/"),
			Workers:        getint("BOT_WORKERS", 8),
			PollTimeout:    getint("BOT_POLL_TIMEOUT", 60),
			ThrottleRPS:    getfloat("BOT_THROTTLE_RPS", 2),
			ThrottleBurst:  getint("BOT_THROTTLE_BURST", 5),
			Debug:          getbool("BOT_DEBUG", false),
		},
		Session: SessionConfig{
			Backend:       strings.ToLower(strings.TrimSpace(getenv("SESSION_BACKEND", "memory"))),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisDB:       getint("REDIS_DB", 0),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
			TTL:           getdur("SESSION_TTL", 72*time.Hour),
		},
		Reminder: ReminderConfig{
			Delay:       getdur("REMINDER_DELAY", 24*time.Hour),
			Interval:    getdur("REMINDER_INTERVAL", 72*time.Hour),
			MaxAttempts: getint("REMINDER_MAX_ATTEMPTS", 3),
		},
		MaxMessageRunes: getint("MAX_MESSAGE_RUNES", 4000),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", ""),
			Issuer:    getenv("JWT_ISSUER", "lawdesk"),
			TokenTTL:  getdur("JWT_TTL", 12*time.Hour),
			Leeway:    getdur("JWT_LEEWAY", 30*time.Second),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Mail: MailConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     getint("SMTP_PORT", 587),
			User:     getenv("SMTP_USER", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("MAIL_FROM", "lawdesk@localhost"),
			To:       getenv("STAFF_EMAIL", ""),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "lawdesk"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" {
		cfg.DB.Driver = "postgres"
	}
	for i, e := range cfg.Uploads.Extensions {
		cfg.Uploads.Extensions[i] = strings.ToLower(strings.TrimPrefix(e, "."))
	}

	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}

	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DB.Driver)
	}
	if strings.TrimSpace(cfg.Uploads.Dir) == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	if cfg.Uploads.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be > 0")
	}
	if len(cfg.Uploads.Extensions) == 0 {
		return errors.New("UPLOAD_EXTENSIONS must list at least one extension")
	}

	if cfg.Bot.Workers < 1 {
		return errors.New("BOT_WORKERS must be >= 1")
	}
	if cfg.Bot.PollTimeout < 0 {
		return errors.New("BOT_POLL_TIMEOUT must be >= 0")
	}
	if cfg.Bot.ThrottleRPS < 0 || cfg.Bot.ThrottleBurst < 1 {
		return errors.New("BOT_THROTTLE_RPS must be >= 0 and BOT_THROTTLE_BURST >= 1")
	}
	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", cfg.Session.Backend)
	}
	if cfg.Session.TTL < 0 {
		return errors.New("SESSION_TTL must be >= 0")
	}
	if cfg.Reminder.Delay < 0 || cfg.Reminder.Interval <= 0 || cfg.Reminder.MaxAttempts < 1 {
		return errors.New("REMINDER_DELAY must be >= 0, REMINDER_INTERVAL > 0 and REMINDER_MAX_ATTEMPTS >= 1")
	}
	if cfg.MaxMessageRunes < 1 {
		return errors.New("MAX_MESSAGE_RUNES must be >= 1")
	}

	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Auth.Enabled() && len(cfg.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if cfg.Auth.TokenTTL <= 0 || cfg.Auth.Leeway < 0 {
		return errors.New("JWT_TTL must be > 0 and JWT_LEEWAY >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.Mail.Port <= 0 || cfg.Mail.Port > 65535 {
		return errors.New("SMTP_PORT must be in [1,65535]")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// RequireBot reports a configuration error for settings only the bot needs.
func (cfg Config) RequireBot() error {
	if strings.TrimSpace(cfg.Bot.Token) == "" {
		return errors.New("BOT_TOKEN must be set")
	}
	if cfg.Bot.AdminChatID == 0 {
		return errors.New("ADMIN_CHAT_ID must be set")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

// getint64 parses chat ids (negative for groups) and byte sizes.
func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
