package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	planhandler "dietguide_backend/internal/feature/dietplan/transport/handler"
	sessionhandler "dietguide_backend/internal/feature/session/transport/handler"
	jwtmw "dietguide_backend/internal/platform/jwt"
	"dietguide_backend/internal/platform/http/handler"
)

// Options はルーター構築時の設定です。
type Options struct {
	JWTSecret   string
	CORSEnabled bool
}

func NewRouter(health *handler.HealthHandler, session *sessionhandler.SessionHandler,
	plan *planhandler.PlanHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS追加（ブラウザから直接呼ぶ場合のみ）
	if opts.CORSEnabled {
		r.Use(cors.Default())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)
	// 画面状態
	r.GET("/session", session.State)
	r.POST("/session/view", session.SetView)
	// 新規ユーザー登録・ログイン（JWT 発行）
	r.POST("/register", session.Register)
	r.POST("/login", session.Login)
	// 目標の一覧
	r.GET("/goals", plan.Goals)

	// 認証必須のルート
	// トークンのemailが現在のセッションユーザーと一致する必要がある
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret), session.RequireCurrentUser())
	{
		auth.POST("/logout", session.Logout)
		auth.POST("/plans", plan.Create)
	}

	return r
}
