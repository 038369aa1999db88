package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/api"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

// serveCmd runs the backend-for-frontend API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default \":$PORT\")")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	screens, err := a.screens(ctx)
	if err != nil {
		return err
	}
	defer screens.Close()

	countdown, err := a.countdown()
	if err != nil {
		return err
	}
	if countdown != nil {
		countdown.Start(nil)
		defer countdown.Stop()
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		Store:     a.store,
		Guard:     a.guard,
		Screens:   screens,
		Auth:      a.auth(),
		Profiles:  a.profiles(),
		Listings:  a.listings(),
		Checkout:  a.checkout(),
		Catalog:   a.catalog(),
		Countdown: countdown,
		Checks:    a.checks,
	})

	addr := listenAddr
	if addr == "" {
		addr = ":" + cfg.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("backend", cfg.Backend.URL).
			Str("session_backend", cfg.Session.Backend).
			Msg("storefront listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
