// Package repo implements persistence for the domain entities on GORM, over
// SQLite (pure Go driver) or PostgreSQL.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/lawdesk/internal/domain"
)

// Supported values for the driver argument of Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// sqlitePragmas are applied to every new SQLite handle, in order.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

type pool struct {
	open, idle        int
	idleTime, maxLife time.Duration
}

var (
	sqlitePool   = pool{open: 10, idle: 10, idleTime: 5 * time.Minute, maxLife: 30 * time.Minute}
	postgresPool = pool{open: 20, idle: 5, idleTime: 5 * time.Minute, maxLife: 30 * time.Minute}
)

// zerologWriter feeds gorm's logger into the process logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// gormConfig logs slow queries and errors, but not the record-not-found
// misses that lookups return as ErrNotFound.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(zerologWriter{}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	}
}

// Open connects to driver ("" means sqlite) and installs the OpenTelemetry
// tracing plugin. For sqlite, dsn is a file path.
func Open(driver, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		db, err = OpenSQLite(dsn)
	case DriverPostgres:
		db, err = OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("gorm tracing: %w", err)
	}
	return db, nil
}

// OpenSQLite opens or creates the database file. The parent directory must
// exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return tune(db, sqlitePool)
}

// OpenPostgres connects with a libpq keyword DSN or a postgres:// URL.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn must not be empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	return tune(db, postgresPool)
}

func tune(db *gorm.DB, p pool) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(p.open)
	sqlDB.SetMaxIdleConns(p.idle)
	sqlDB.SetConnMaxIdleTime(p.idleTime)
	sqlDB.SetConnMaxLifetime(p.maxLife)
	return db, nil
}

// AutoMigrate creates or updates every table. Parents precede children so
// foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.PartnerProfile{},
		&domain.CaseQuestionnaire{},
		&domain.CaseQuestionnaireDocument{},
		&domain.CaseMessage{},
		&domain.ReferralLink{},
		&domain.ReferralRelationship{},
		&domain.PartnerRevenue{},
		&domain.ReferralPayout{},
		&domain.NotificationLog{},
		&domain.Idempotency{},
	)
}
