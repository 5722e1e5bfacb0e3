// Command lawdesk runs the legal intake system: the Telegram bot, the admin
// HTTP API and the periodic jobs (profile reminders, monthly payouts).
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/lawdesk/internal/config"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/observability"
	"github.com/tbourn/lawdesk/internal/repo"
	"github.com/tbourn/lawdesk/internal/sysutil"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "lawdesk",
		Short:         "Legal services intake bot and back office",
		Version:       version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(botCmd())
	root.AddCommand(remindCmd())
	root.AddCommand(payoutsCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func version() string {
	return sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), Version)
}

// app is what every command needs: configuration, logging, tracing and the
// database.
type app struct {
	cfg      config.Config
	db       *gorm.DB
	shutdown observability.ShutdownFunc
}

func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	return config.Load()
}

// bootstrap prepares the process for role. The schema is migrated on every
// start.
func bootstrap(ctx context.Context, role string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, role, version())

	shutdown, err := observability.Setup(ctx, cfg.OTEL, role, version())
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.Source())
	if err != nil {
		_ = shutdown.Within(5 * time.Second)
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = shutdown.Within(5 * time.Second)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().
		Str("db_driver", cfg.DB.Driver).
		Bool("tracing", cfg.OTEL.Enabled).
		Msg("bootstrap complete")
	return &app{cfg: cfg, db: db, shutdown: shutdown}, nil
}

func (a *app) close() {
	if err := a.shutdown.Within(5 * time.Second); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// partnersChat is where cases and partner profiles go.
func (a *app) partnersChat() int64 {
	if a.cfg.Bot.PartnersChatID != 0 {
		return a.cfg.Bot.PartnersChatID
	}
	return a.cfg.Bot.AdminChatID
}

// telegram connects to the Bot API. It returns nil without a token.
func (a *app) telegram() (*tgbotapi.BotAPI, error) {
	if a.cfg.Bot.Token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(a.cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = a.cfg.Bot.Debug
	log.Info().Str("bot", api.Self.UserName).Msg("telegram connected")
	return api, nil
}

// notifier delivers through api and, when SMTP is configured, mirrors the
// staff chats to the staff mailbox. Without api notifications are dropped.
func (a *app) notifier(api *tgbotapi.BotAPI) notify.Notifier {
	if api == nil {
		log.Warn().Msg("BOT_TOKEN not set; Telegram notifications are disabled")
		return notify.Nop{}
	}
	tg := notify.NewTelegram(api)
	m := a.cfg.Mail
	if !m.Enabled() {
		return tg
	}
	return &notify.Tee{
		Primary: tg,
		Copy:    notify.NewMail(m.Host, m.Port, m.User, m.Password, m.From, m.To),
		Mirror:  []int64{a.cfg.Bot.AdminChatID, a.partnersChat()},
	}
}
