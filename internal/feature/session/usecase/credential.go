package usecase

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier は保存用パスワード値の生成と照合を抽象化します。
// 平文比較（デモ互換）とbcryptを差し替えられるようにするためのインターフェースです。
type CredentialVerifier interface {
	// Hash は保存するパスワード値を生成します。
	Hash(password string) (string, error)
	// Verify は保存値と入力されたパスワードが一致するか判定します。
	Verify(stored, attempt string) bool
}

// PlaintextVerifier はパスワードをそのまま保存・比較します。
// 元のデモアプリとの挙動互換のためだけに存在し、本番用途には使用しないこと。
type PlaintextVerifier struct{}

// Hash はパスワードをそのまま返します。
func (PlaintextVerifier) Hash(password string) (string, error) {
	return password, nil
}

// Verify は定数時間比較で一致を判定します。
func (PlaintextVerifier) Verify(stored, attempt string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1
}

// dummyBcryptHash はユーザーが存在しない場合にも比較処理を走らせるためのダミーハッシュです。
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// BcryptVerifier はbcryptでパスワードをハッシュ化・照合します。
type BcryptVerifier struct {
	Cost int // 0の場合はbcrypt.DefaultCost
}

// Hash はbcryptハッシュを生成します。
func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はbcryptハッシュと平文パスワードを照合します。
// 保存値が空の場合もダミーハッシュで比較し、応答時間からユーザーの有無が漏れないようにします。
func (v BcryptVerifier) Verify(stored, attempt string) bool {
	if stored == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyBcryptHash), []byte(attempt))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
}

// NewCredentialVerifier はスキーム名からCredentialVerifierを生成します。
// 対応スキーム: "bcrypt"（デフォルト）, "plaintext"
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch scheme {
	case "", "bcrypt":
		return BcryptVerifier{}, nil
	case "plaintext":
		return PlaintextVerifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}
