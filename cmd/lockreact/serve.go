package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"lockreact/internal/config"
	"lockreact/internal/game"
	"lockreact/internal/handlers"
	"lockreact/internal/logging"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

//go:embed static/*
var embeddedStatic embed.FS

var (
	serveAddr         string
	serveH2C          bool
	serveCORSOrigins  []string
	serveBaseURL      string
	serveTickInterval time.Duration
	serveSessionIdle  time.Duration
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser game over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	defaults := config.Default()
	cmd.Flags().StringVar(&serveAddr, "addr", defaults.HTTP.Addr, "HTTP listen address")
	cmd.Flags().BoolVar(&serveH2C, "h2c", false, "accept cleartext HTTP/2")
	cmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "origins allowed to read snapshots (repeatable)")
	cmd.Flags().StringVar(&serveBaseURL, "base-url", "", "public base URL for share links")
	cmd.Flags().DurationVar(&serveTickInterval, "tick-interval", defaults.HTTP.TickInterval, "session render interval")
	cmd.Flags().DurationVar(&serveSessionIdle, "session-idle", defaults.HTTP.SessionIdle, "drop unwatched sessions idle this long")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "addr", &cfg.HTTP.Addr, serveAddr)
	applyBoolFlag(cmd, "h2c", &cfg.HTTP.H2C, serveH2C)
	if cmd.Flags().Changed("cors-origin") {
		cfg.HTTP.CORSOrigins = serveCORSOrigins
	}
	applyStringFlag(cmd, "base-url", &cfg.HTTP.BaseURL, serveBaseURL)
	applyDurationFlag(cmd, "tick-interval", &cfg.HTTP.TickInterval, serveTickInterval)
	applyDurationFlag(cmd, "session-idle", &cfg.HTTP.SessionIdle, serveSessionIdle)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg, nil); err != nil {
		return err
	}

	store := game.NewStore(nil, cfg.HTTP.TickInterval)
	router, err := newRouter(cfg, store)
	if err != nil {
		return err
	}

	var handler http.Handler = router
	if cfg.HTTP.H2C {
		handler = h2c.NewHandler(router, &http2.Server{})
	}
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go store.RunJanitor(ctx, cfg.HTTP.SessionIdle/2, cfg.HTTP.SessionIdle)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Bool("h2c", cfg.HTTP.H2C).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func newRouter(cfg config.Config, store *game.Store) (http.Handler, error) {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	homeHandler := handlers.NewHomeHandler(store)
	sessionHandler := handlers.NewSessionHandler(store, handlers.Options{
		BaseURL:        cfg.HTTP.BaseURL,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: requestTimeout,
		Socket:         handlers.DefaultSocketConfig(),
	})

	homeHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)
	return r, nil
}
