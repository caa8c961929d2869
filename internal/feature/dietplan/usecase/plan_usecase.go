package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
	sessionentity "dietguide_backend/internal/feature/session/domain/entity"
)

const (
	// DefaultModel は生成サービスのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout はリモート呼び出し1回あたりのデフォルトのタイムアウトです。
	DefaultTimeout = 60 * time.Second
)

// GenerationRequest は生成サービスへの1回分のリクエストです。
type GenerationRequest struct {
	Model             string
	Prompt            string
	SystemInstruction string
	ResponseMIMEType  string
}

// Generator はテキスト生成サービスのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// 認証情報が無効な場合、ErrInvalidAPIKeyをラップしたエラーを返すこと。
type Generator interface {
	// Generate はプロンプトを送信し、レスポンス全文を返します。
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Config はPlanUsecaseの設定です。
type Config struct {
	Model   string        // 空の場合はDefaultModel
	Timeout time.Duration // 0以下の場合はDefaultTimeout
}

// PlanUsecase は食事プラン取得のパイプラインです。
// 入力検証 → プロンプト生成 → リモート呼び出し（1回のみ） → レスポンス検証 → エラー分類 の順に処理します。
// キャッシュ・リトライ・レート制限は行いません。
type PlanUsecase struct {
	generator Generator
	model     string
	timeout   time.Duration
	inFlight  *semaphore.Weighted
}

// NewPlanUsecase はPlanUsecaseの新しいインスタンスを生成します。
// generatorがnilの場合（APIキー未設定）、RequestPlanは入力検証後にErrMissingAPIKeyを返します。
func NewPlanUsecase(generator Generator, cfg Config) *PlanUsecase {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &PlanUsecase{
		generator: generator,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		inFlight:  semaphore.NewWeighted(1),
	}
}

// RequestPlan はユーザーの目標に合わせた食事プランを生成します。
// 同時に実行できるリクエストは1つだけで、実行中に呼ばれた場合はErrRequestInFlightを返します。
func (u *PlanUsecase) RequestPlan(ctx context.Context, user *sessionentity.User, goal entity.WellnessGoal, conditionDetails string) (*entity.DietPlan, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if goal == "" {
		return nil, ErrNoGoalSelected
	}
	if !goal.Valid() {
		return nil, fmt.Errorf("%w: unknown goal %q", ErrNoGoalSelected, string(goal))
	}
	if goal.RequiresCondition() && strings.TrimSpace(conditionDetails) == "" {
		return nil, ErrMissingConditionDetails
	}
	if u.generator == nil {
		return nil, ErrMissingAPIKey
	}

	if !u.inFlight.TryAcquire(1) {
		return nil, ErrRequestInFlight
	}
	defer u.inFlight.Release(1)

	if !goal.RequiresCondition() {
		conditionDetails = ""
	}
	req := GenerationRequest{
		Model:             u.model,
		Prompt:            BuildPrompt(goal.Describe(conditionDetails), conditionDetails),
		SystemInstruction: SystemInstruction,
		ResponseMIMEType:  ResponseMIMETypeJSON,
	}

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	started := time.Now()
	text, err := u.generator.Generate(callCtx, req)
	if err != nil {
		slog.Error("diet plan generation failed",
			"error", err, "user_id", user.ID, "goal", goal.Slug(), "elapsed", time.Since(started))
		return nil, classifyGenerateError(err)
	}

	plan, err := ParseDietPlan(text)
	if err != nil {
		slog.Warn("diet plan response rejected", "error", err, "user_id", user.ID, "raw", text)
		return nil, err
	}

	slog.Info("diet plan generated", "user_id", user.ID, "goal", goal.Slug(), "elapsed", time.Since(started))
	return plan, nil
}

// classifyGenerateError はリモート呼び出しのエラーをエラー分類に当てはめます。
// 分類済みのエラーはそのまま返し、それ以外はErrUpstreamRequestFailedでラップします。
func classifyGenerateError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAPIKey),
		errors.Is(err, ErrMissingAPIKey),
		errors.Is(err, ErrInvalidResponseFormat),
		errors.Is(err, ErrIncompleteResponse):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamRequestFailed, err)
	}
}
