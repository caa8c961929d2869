package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"dietguide_backend/internal/app/di"
	planusecase "dietguide_backend/internal/feature/dietplan/usecase"
	sessionusecase "dietguide_backend/internal/feature/session/usecase"
	"dietguide_backend/internal/platform/config"
	"dietguide_backend/internal/platform/logging"
)

// app はコマンドが共有する依存関係です。
type app struct {
	session *sessionusecase.SessionController
	plans   *planusecase.PlanUsecase
	close   func() error
}

// appLoader はコマンド実行時に依存関係を構築します（テストで差し替えます）。
type appLoader func(ctx context.Context, logOut io.Writer) (*app, error)

// loadApp は設定を読み込み、ストア・セッション・パイプラインを構築します。
func loadApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(logOut, cfg.LogFormat, cfg.LogLevel)

	store, closeStore, err := di.NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	session, err := di.NewSessionController(ctx, cfg, store)
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}
	plans, err := di.NewPlanUsecase(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}
	slog.Debug("cli ready", "store", cfg.StoreDriver)
	return &app{session: session, plans: plans, close: closeStore}, nil
}
