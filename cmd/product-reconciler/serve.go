package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	httpapi "github.com/fairyhunter13/product-reconciler/internal/http"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
	"github.com/fairyhunter13/product-reconciler/internal/store"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the authoritative product store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	obs.Logger.Info().Msg("service_starting")

	st := store.New()
	app := httpapi.NewApp(cfg, st)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("http_listen")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			obs.Logger.Error().Err(err).Msg("http_server_error")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	obs.Logger.Info().Msg("shutdown_signal")

	app.StartShutdown()
	ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error().Err(err).Msg("http_shutdown_error")
		return err
	}
	obs.Logger.Info().Int("product_count", st.Len()).Msg("service_stopped")
	return nil
}
