// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout はストアの疎通確認のタイムアウトです。
const pingTimeout = 2 * time.Second

// Pinger は疎通確認できるバックエンドです。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler は /healthz エンドポイントを処理します。
type HealthHandler struct {
	store  string
	pinger Pinger
}

// NewHealthHandler はHealthHandlerを生成します。pingerがnilの場合、ストアの確認は行いません。
func NewHealthHandler(store string, pinger Pinger) *HealthHandler {
	return &HealthHandler{store: store, pinger: pinger}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// ストアに到達できない場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	body := gin.H{"status": "ok"}
	if h.store != "" {
		body["store"] = h.store
	}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			slog.Error("health check failed", "store", h.store, "error", err)
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}
