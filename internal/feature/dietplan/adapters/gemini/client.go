// Package gemini はGoogle Gemini APIを使用した食事プラン生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"dietguide_backend/internal/feature/dietplan/usecase"
)

// Config はGeminiGeneratorの接続設定です。
type Config struct {
	APIKey string
	// BaseURL は空の場合SDKのデフォルトを使用します。テストではhttptestサーバーを指定します。
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator はGoogle Gemini APIを使用してテキストを生成します。
type GeminiGenerator struct {
	client *genai.Client
}

// GeminiGeneratorがGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator はAPIキーを使用してGeminiGeneratorの新しいインスタンスを生成します。
// APIキーが空の場合はusecase.ErrMissingAPIKeyを返します。
func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, usecase.ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// Generate はプロンプトを送信し、レスポンスのテキスト全体を返します。
func (g *GeminiGenerator) Generate(ctx context.Context, req usecase.GenerationRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		if isInvalidKey(err) {
			return "", fmt.Errorf("%w: %w", usecase.ErrInvalidAPIKey, err)
		}
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return resp.Text(), nil
}

// isInvalidKey はAPIキーが拒否されたことを示すエラーかどうかを判定します。
func isInvalidKey(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if strings.Contains(apiErr.Message, "API key not valid") {
		return true
	}
	for _, d := range apiErr.Details {
		if reason, ok := d["reason"].(string); ok && reason == "API_KEY_INVALID" {
			return true
		}
	}
	return false
}
