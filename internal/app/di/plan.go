package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dietguide_backend/internal/feature/dietplan/adapters/gemini"
	"dietguide_backend/internal/feature/dietplan/usecase"
	"dietguide_backend/internal/platform/config"
	infrahttp "dietguide_backend/internal/platform/http"
)

// transportSlack はHTTPクライアントのタイムアウトをcontextのタイムアウトより長くするための余裕です。
const transportSlack = 10 * time.Second

// NewGenerator はGemini APIのクライアントを生成します。
// APIキーが未設定の場合はnilを返し、プラン要求時にErrMissingAPIKeyとなります。
func NewGenerator(ctx context.Context, cfg *config.Config) (usecase.Generator, error) {
	g, err := gemini.NewGeminiGenerator(ctx, gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		BaseURL:    cfg.Gemini.BaseURL,
		HTTPClient: infrahttp.NewHTTPClient(cfg.PlanRequestTimeout + transportSlack),
	})
	if errors.Is(err, usecase.ErrMissingAPIKey) {
		slog.Warn("GEMINI_API_KEY is not set; diet plan requests will fail")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewPlanUsecase は設定に従ってPlanUsecaseを構築します。
func NewPlanUsecase(ctx context.Context, cfg *config.Config) (*usecase.PlanUsecase, error) {
	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewPlanUsecase(gen, usecase.Config{
		Model:   cfg.Gemini.Model,
		Timeout: cfg.PlanRequestTimeout,
	}), nil
}
