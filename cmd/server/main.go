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

	"dietguide_backend/internal/app/di"
	"dietguide_backend/internal/app/router"
	planhandler "dietguide_backend/internal/feature/dietplan/transport/handler"
	sessionhandler "dietguide_backend/internal/feature/session/transport/handler"
	"dietguide_backend/internal/platform/config"
	"dietguide_backend/internal/platform/http/handler"
	jwtmw "dietguide_backend/internal/platform/jwt"
	"dietguide_backend/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 設定（.env → YAML → 環境変数）
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	// Store
	store, closeStore, err := di.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	// Usecase
	session, err := di.NewSessionController(ctx, cfg, store)
	if err != nil {
		return err
	}
	plans, err := di.NewPlanUsecase(ctx, cfg)
	if err != nil {
		return err
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; authenticated routes will return 500. Set a strong secret in production.")
	}

	// Handler
	healthH := handler.NewHealthHandler(cfg.StoreDriver, store)
	sessionH := sessionhandler.NewSessionHandler(session, jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration))
	planH := planhandler.NewPlanHandler(plans, session)

	// ルータ生成
	r := router.NewRouter(healthH, sessionH, planH, router.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSEnabled: cfg.CORSEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "model", cfg.Gemini.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
