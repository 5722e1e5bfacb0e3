package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/tbourn/lawdesk/internal/http"
	"github.com/tbourn/lawdesk/internal/observability"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, observability.RoleAPI)
			if err != nil {
				return err
			}
			defer a.close()

			api, err := a.telegram()
			if err != nil {
				return err
			}

			gin.SetMode(a.cfg.GinMode)
			r := gin.New()
			httpapi.RegisterRoutes(r, a.db, a.notifier(api), a.cfg)

			srv := &http.Server{
				Addr:              net.JoinHostPort("", a.cfg.Port),
				Handler:           r,
				ReadTimeout:       a.cfg.ReadTimeout,
				ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
				WriteTimeout:      a.cfg.WriteTimeout,
				IdleTimeout:       a.cfg.IdleTimeout,
				MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
			}
			return listen(ctx, srv)
		},
	}
}

// listen runs srv until ctx is canceled, then drains it.
func listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Str("addr", srv.Addr).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}
