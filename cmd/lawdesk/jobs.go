package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/lawdesk/internal/http/middleware"
	"github.com/tbourn/lawdesk/internal/observability"
	"github.com/tbourn/lawdesk/internal/services"
)

func remindCmd() *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Remind registered users without a partner profile",
		Long: `Send the profile reminder to every eligible user once, or repeatedly
with --every until interrupted. Delay, interval and the attempt cap come from
REMINDER_DELAY, REMINDER_INTERVAL and REMINDER_MAX_ATTEMPTS.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, observability.RoleJobs)
			if err != nil {
				return err
			}
			defer a.close()

			api, err := a.telegram()
			if err != nil {
				return err
			}
			r := a.cfg.Reminder
			svc := &services.ReminderService{
				DB:          a.db,
				Notifier:    a.notifier(api),
				Delay:       r.Delay,
				Interval:    r.Interval,
				MaxAttempts: r.MaxAttempts,
			}
			if every <= 0 {
				return sweep(ctx, svc)
			}

			t := time.NewTicker(every)
			defer t.Stop()
			for {
				if err := sweep(ctx, svc); err != nil {
					log.Error().Err(err).Msg("reminder sweep")
				}
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
				}
			}
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "repeat the sweep at this interval")
	return cmd
}

func sweep(ctx context.Context, svc *services.ReminderService) error {
	res, err := svc.Sweep(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("checked", res.Checked).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("reminder sweep")
	return nil
}

func payoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Referral payout jobs",
	}

	var year, month int
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Create pending payouts for a month (default: the previous month)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, observability.RoleJobs)
			if err != nil {
				return err
			}
			defer a.close()

			if year == 0 || month == 0 {
				prev := time.Now().UTC().AddDate(0, -1, 0)
				if year == 0 {
					year = prev.Year()
				}
				if month == 0 {
					month = int(prev.Month())
				}
			}
			res, err := (&services.PayoutService{DB: a.db}).Generate(ctx, year, month)
			if err != nil {
				return err
			}
			log.Info().
				Int("year", res.Year).
				Int("month", res.Month).
				Int("created", len(res.Created)).
				Int("skipped", res.Skipped).
				Msg("payouts generated")
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	gen.Flags().IntVar(&year, "year", 0, "calendar year")
	gen.Flags().IntVar(&month, "month", 0, "calendar month 1-12")
	cmd.AddCommand(gen)
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), observability.RoleJobs)
			if err != nil {
				return err
			}
			a.close()
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		subject, name string
		ttl           time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token for the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tok, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, subject, name, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "staff member id (sub claim)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	cmd.SetErr(os.Stderr)
	return cmd
}
