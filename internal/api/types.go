// Package api はHTTP APIで共通して使うレスポンス型を定義します。
package api

// ErrorResponse はエラー時のレスポンスボディです。Errorにはユーザー向けのメッセージのみを入れます。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}
