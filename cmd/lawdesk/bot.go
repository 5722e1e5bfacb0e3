package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/lawdesk/internal/bot"
	"github.com/tbourn/lawdesk/internal/config"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/observability"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

func botCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot (long polling)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, observability.RoleBot)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireBot(); err != nil {
				return err
			}

			api, err := a.telegram()
			if err != nil {
				return err
			}
			store, err := sessionStore(ctx, a.cfg.Session)
			if err != nil {
				return err
			}
			n := a.notifier(api)
			cfg := a.cfg

			b := bot.New(bot.Deps{
				API:       api,
				Sessions:  store,
				Notifier:  n,
				Files:     bot.NewDownloader(api),
				Users:     &services.UserService{DB: a.db},
				Referrals: &services.ReferralService{DB: a.db, BotURL: cfg.Bot.URL},
				Profiles:  &services.ProfileService{DB: a.db, Notifier: n, PartnersChatID: a.partnersChat()},
				Revenue:   &services.RevenueService{DB: a.db},
				Cases:     &services.QuestionnaireService{DB: a.db, Notifier: n},
				Messages: &services.MessagingService{
					DB:          a.db,
					Notifier:    n,
					StaffChatID: cfg.Bot.AdminChatID,
					MaxRunes:    cfg.MaxMessageRunes,
				},
			}, bot.Options{
				AdminChatID:    cfg.Bot.AdminChatID,
				PartnersChatID: cfg.Bot.PartnersChatID,
				UploadDir:      cfg.Uploads.Dir,
				Policy:         forms.AttachmentPolicy{Extensions: cfg.Uploads.Extensions, MaxSize: cfg.Uploads.MaxFileSize},
				ThrottleRPS:    cfg.Bot.ThrottleRPS,
				ThrottleBurst:  cfg.Bot.ThrottleBurst,
				Workers:        cfg.Bot.Workers,
			})

			if metricsAddr != "" {
				go serveMetrics(ctx, metricsAddr)
			}

			u := tgbotapi.NewUpdate(0)
			u.Timeout = cfg.Bot.PollTimeout
			updates := api.GetUpdatesChan(u)
			go func() {
				<-ctx.Done()
				api.StopReceivingUpdates()
			}()

			log.Info().
				Int("workers", cfg.Bot.Workers).
				Str("sessions", cfg.Session.Backend).
				Msg("bot polling")
			b.Run(ctx, updates)
			log.Info().Msg("bot stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "address for the Prometheus /metrics endpoint (empty to disable)")
	return cmd
}

func sessionStore(ctx context.Context, c config.SessionConfig) (session.Store, error) {
	switch c.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		store := session.NewRedisStore(client, c.TTL)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pctx); err != nil {
			return nil, fmt.Errorf("redis %s: %w", c.RedisAddr, err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(), nil
	}
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := listen(ctx, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server")
	}
}
