// Package handler はdietplanフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"dietguide_backend/internal/api"
	"dietguide_backend/internal/feature/dietplan/domain/entity"
	"dietguide_backend/internal/feature/dietplan/transport/http/dto"
	"dietguide_backend/internal/feature/dietplan/usecase"
	sessionentity "dietguide_backend/internal/feature/session/domain/entity"
)

// msgSessionChanged はプラン生成中にログインユーザーが変わった場合のメッセージです。
const msgSessionChanged = "the session changed while the plan was being generated"

// PlanUsecase は食事プラン取得のユースケースを定義します。
type PlanUsecase interface {
	RequestPlan(ctx context.Context, user *sessionentity.User, goal entity.WellnessGoal, conditionDetails string) (*entity.DietPlan, error)
}

// SessionState は現在のセッション状態を返します。
type SessionState interface {
	State() sessionentity.State
}

// PlanHandler は食事プランのHTTPリクエストを処理します。
type PlanHandler struct {
	plans    PlanUsecase
	sessions SessionState
}

// NewPlanHandler はPlanHandlerの新しいインスタンスを生成します。
func NewPlanHandler(plans PlanUsecase, sessions SessionState) *PlanHandler {
	return &PlanHandler{plans: plans, sessions: sessions}
}

// Goals は選択可能な目標の一覧を返します。
func (h *PlanHandler) Goals(c *gin.Context) {
	res := make([]dto.GoalRes, 0, len(entity.WellnessGoals))
	for _, g := range entity.WellnessGoals {
		res = append(res, dto.GoalRes{Label: string(g), Slug: g.Slug(), RequiresCondition: g.RequiresCondition()})
	}
	c.JSON(http.StatusOK, res)
}

// Create は現在のユーザー向けの食事プランを生成します。
// 生成中にセッションのepochが変わった場合、結果は破棄して409を返します。
func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.PlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	goal, err := entity.ParseWellnessGoal(req.Goal)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	before := h.sessions.State()
	plan, err := h.plans.RequestPlan(c.Request.Context(), before.User, goal, req.ConditionDetails)
	if err != nil {
		status, msg := statusForError(err)
		slog.Warn("plan request failed", "error", err, "status", status, "goal", goal.Slug(), "remote_addr", c.ClientIP())
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	if after := h.sessions.State(); after.Epoch != before.Epoch {
		slog.Info("discarding stale plan", "epoch_before", before.Epoch, "epoch_after", after.Epoch)
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: msgSessionChanged})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// statusForError はエラー分類をHTTPステータスとユーザー向けメッセージに変換します。
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrNotAuthenticated):
		return http.StatusUnauthorized, usecase.ErrNotAuthenticated.Error()
	case errors.Is(err, usecase.ErrNoGoalSelected):
		return http.StatusBadRequest, usecase.ErrNoGoalSelected.Error()
	case errors.Is(err, usecase.ErrMissingConditionDetails):
		return http.StatusBadRequest, usecase.ErrMissingConditionDetails.Error()
	case errors.Is(err, usecase.ErrRequestInFlight):
		return http.StatusConflict, usecase.ErrRequestInFlight.Error()
	case errors.Is(err, usecase.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, usecase.ErrMissingAPIKey.Error()
	case errors.Is(err, usecase.ErrInvalidAPIKey):
		return http.StatusServiceUnavailable, usecase.ErrInvalidAPIKey.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, usecase.ErrUpstreamRequestFailed.Error()
	case errors.Is(err, usecase.ErrUpstreamRequestFailed):
		return http.StatusBadGateway, usecase.ErrUpstreamRequestFailed.Error()
	case errors.Is(err, usecase.ErrInvalidResponseFormat):
		return http.StatusBadGateway, usecase.ErrInvalidResponseFormat.Error()
	case errors.Is(err, usecase.ErrIncompleteResponse):
		return http.StatusBadGateway, usecase.ErrIncompleteResponse.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
