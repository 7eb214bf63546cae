package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AngelCh415/collabhub/internal/config"
	"github.com/AngelCh415/collabhub/internal/guard"
	"github.com/AngelCh415/collabhub/internal/httpx"
	"github.com/AngelCh415/collabhub/internal/ingest"
	"github.com/AngelCh415/collabhub/internal/metrics"
	"github.com/AngelCh415/collabhub/internal/session"
	"github.com/AngelCh415/collabhub/internal/store"
	"github.com/AngelCh415/collabhub/internal/telemetry"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("store error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	tel := telemetry.New()
	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	syncer := ingest.NewSyncer(cl, st, logger, cfg, tel)
	mSvc := metrics.NewService(st)

	g := guard.New(guard.Config{
		LoginPath:  cfg.LoginPath,
		CookieName: cfg.SessionCookie,
		Policy:     session.Policy{AdminUser: cfg.AdminUser, Roles: cfg.SessionRoles},
		Protected:  cfg.ProtectedPrefixes,
		Exclude:    cfg.ExcludePatterns,
	}, logger, tel.GuardDecisions)

	if cfg.SourceURL != "" {
		go syncer.Loop(ctx)
		syncer.Trigger()
	}

	r := httpx.NewRouter(httpx.Deps{
		Log:           logger,
		Guard:         g,
		Sync:          syncer,
		Metrics:       mSvc,
		Telemetry:     tel,
		WebhookSecret: cfg.WebhookSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
