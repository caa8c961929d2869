// Package handler はsessionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"dietguide_backend/internal/api"
	"dietguide_backend/internal/feature/session/domain/entity"
	"dietguide_backend/internal/feature/session/transport/http/dto"
	"dietguide_backend/internal/feature/session/usecase"
	jwtmw "dietguide_backend/internal/platform/jwt"
)

// SessionController はセッション操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type SessionController interface {
	State() entity.State
	Login(ctx context.Context, email, password string) (entity.State, error)
	Register(ctx context.Context, name, email, password string) (entity.State, error)
	Logout(ctx context.Context) (entity.State, error)
	ShowRegister() entity.State
	ShowLogin() entity.State
}

// TokenGenerator はログイン成功時に発行するアクセストークンを生成します。
type TokenGenerator interface {
	GenerateToken(userID, email string, epoch uint64) (string, error)
}

// SessionHandler はセッション操作のHTTPリクエストを処理します。
type SessionHandler struct {
	session SessionController
	tokens  TokenGenerator
}

// NewSessionHandler はSessionHandlerの新しいインスタンスを生成します。
func NewSessionHandler(session SessionController, tokens TokenGenerator) *SessionHandler {
	return &SessionHandler{session: session, tokens: tokens}
}

// State は現在のセッション状態を返します。
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewStateRes(h.session.State()))
}

// SetView はログイン画面と登録画面を切り替えます。ログイン中は状態を変えません。
func (h *SessionHandler) SetView(c *gin.Context) {
	var req dto.ViewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "view must be login or register"})
		return
	}
	var s entity.State
	if entity.View(req.View) == entity.ViewRegister {
		s = h.session.ShowRegister()
	} else {
		s = h.session.ShowLogin()
	}
	c.JSON(http.StatusOK, dto.NewStateRes(s))
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はトークン付きで201を返却
func (h *SessionHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: registerValidationMessage(req)})
		return
	}

	s, err := h.session.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: usecase.ErrEmailAlreadyExists.Error()})
		case errors.Is(err, usecase.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: usecase.ErrWeakPassword.Error()})
		case errors.Is(err, usecase.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: usecase.ErrPasswordTooLong.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "registration failed"})
		}
		return
	}

	h.respondAuthenticated(c, http.StatusCreated, s)
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 認証成功時はトークン付きで200を返却
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	s, err := h.session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: usecase.ErrInvalidCredentials.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "login failed"})
		return
	}

	h.respondAuthenticated(c, http.StatusOK, s)
}

// Logout はセッションを終了します。RequireCurrentUserの後ろで使用します。
func (h *SessionHandler) Logout(c *gin.Context) {
	s, err := h.session.Logout(c.Request.Context())
	if err != nil {
		slog.Error("logout failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "logout failed"})
		return
	}
	slog.Info("user logged out", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewStateRes(s))
}

// RequireCurrentUser はトークンのemailとエポックが現在のセッションと一致することを要求するミドルウェアです。
// ログアウト前に発行されたトークンは、同じユーザーが再ログインした後も拒否されます。
// jwtmw.AuthRequiredの後ろに置きます。
func (h *SessionHandler) RequireCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := h.session.State()
		email := c.GetString(jwtmw.ContextEmail)
		raw, hasEpoch := c.Get(jwtmw.ContextEpoch)
		epoch, _ := raw.(uint64)
		if s.User == nil || email == "" || s.User.Email != email || !hasEpoch || epoch != s.Epoch {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "session is not active for this token"})
			return
		}
		c.Next()
	}
}

func (h *SessionHandler) respondAuthenticated(c *gin.Context, status int, s entity.State) {
	token, err := h.tokens.GenerateToken(s.User.ID, s.User.Email, s.Epoch)
	if err != nil {
		slog.Error("token generation failed", "error", err, "user_id", s.User.ID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to issue token"})
		return
	}
	slog.Info("user authenticated", "user_id", s.User.ID, "remote_addr", c.ClientIP())
	c.JSON(status, dto.AuthRes{State: dto.NewStateRes(s), Token: token})
}

// registerValidationMessage はバインドに失敗した登録リクエストに対するメッセージを返します。
func registerValidationMessage(req dto.RegisterReq) string {
	switch {
	case req.Password != "" && utf8.RuneCountInString(req.Password) < usecase.MinPasswordLength:
		return usecase.ErrWeakPassword.Error()
	case len(req.Password) > usecase.MaxPasswordBytes:
		return usecase.ErrPasswordTooLong.Error()
	case req.ConfirmPassword != "" && req.ConfirmPassword != req.Password:
		return "passwords do not match"
	default:
		return "invalid request"
	}
}
