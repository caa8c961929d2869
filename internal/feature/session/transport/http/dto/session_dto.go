// Package dto はsessionフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "dietguide_backend/internal/feature/session/domain/entity"

// RegisterReq は/registerエンドポイントのリクエストボディを表します。
// confirmPasswordは省略可能で、指定された場合はpasswordと一致する必要があります。
type RegisterReq struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
}

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ViewReq は/session/viewエンドポイントのリクエストボディを表します。
type ViewReq struct {
	View string `json:"view" binding:"required,oneof=login register"`
}

// UserRes はパスワードハッシュを除いたユーザー情報です。
type UserRes struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// StateRes はセッション状態のレスポンスです。
type StateRes struct {
	View  string   `json:"view"`
	User  *UserRes `json:"user,omitempty"`
	Epoch uint64   `json:"epoch"`
}

// AuthRes はログイン・登録成功時のレスポンスです。
type AuthRes struct {
	State StateRes `json:"state"`
	Token string   `json:"token"`
}

// NewStateRes はドメインのStateをレスポンスに変換します。
func NewStateRes(s entity.State) StateRes {
	res := StateRes{View: string(s.View), Epoch: s.Epoch}
	if s.User != nil {
		res.User = &UserRes{ID: s.User.ID, Name: s.User.Name, Email: s.User.Email}
	}
	return res
}
