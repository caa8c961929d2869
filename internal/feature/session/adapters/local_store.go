// Package adapters はsessionフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"dietguide_backend/internal/feature/session/domain/entity"
	"dietguide_backend/internal/feature/session/usecase"
)

const (
	// UsersKey はユーザー一覧（JSON配列）を保存するキーです。
	UsersKey = "aiDietUsers"
	// CurrentUserEmailKey は現在のセッションのメールアドレスを保存するキーです。
	CurrentUserEmailKey = "aiDietCurrentUserEmail"
)

// KeyValueStore はブラウザのlocalStorage相当のキーバリューストアです。
// Goの慣例に従い、インターフェースは利用者（adapters）側で定義します。
type KeyValueStore interface {
	// Get はキーの値を返します。キーが存在しない場合、foundはfalseです。
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set はキーに値を保存します。
	Set(ctx context.Context, key, value string) error
	// Remove はキーを削除します。存在しない場合も成功します。
	Remove(ctx context.Context, key string) error
}

// LocalStore はKeyValueStore上にユーザー一覧とセッションマーカーを保存します。
// ユーザー一覧は1つのキーにJSON配列として、セッションは平文のメールアドレスとして保存します。
type LocalStore struct {
	kv KeyValueStore
}

// LocalStoreがUserRepositoryとSessionRepositoryを実装していることをコンパイル時に検証します。
var (
	_ usecase.UserRepository    = (*LocalStore)(nil)
	_ usecase.SessionRepository = (*LocalStore)(nil)
)

// NewLocalStore は指定されたKeyValueStoreでLocalStoreを生成します。
func NewLocalStore(kv KeyValueStore) *LocalStore {
	return &LocalStore{kv: kv}
}

// loadUsers はユーザー一覧を読み込みます。キーが存在しない場合は空の一覧を返します。
func (s *LocalStore) loadUsers(ctx context.Context) ([]entity.User, error) {
	raw, found, err := s.kv.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	if !found || raw == "" {
		return []entity.User{}, nil
	}
	var users []entity.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Create はユーザーを一覧の末尾に追加します。
// 同じメールアドレス（完全一致）が存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (s *LocalStore) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return usecase.ErrEmailAlreadyExists
		}
	}
	users = append(users, *user)
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	return s.kv.Set(ctx, UsersKey, string(data))
}

// FindByEmail はメールアドレスに完全一致するユーザーを返します。
// 見つからない場合、usecase.ErrUserNotFoundを返します。
func (s *LocalStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, usecase.ErrUserNotFound
}

// CurrentEmail はセッションのメールアドレスを返します。
// 未保存または空文字の場合、usecase.ErrSessionNotFoundを返します。
func (s *LocalStore) CurrentEmail(ctx context.Context) (string, error) {
	email, found, err := s.kv.Get(ctx, CurrentUserEmailKey)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if !found || email == "" {
		return "", usecase.ErrSessionNotFound
	}
	return email, nil
}

// Save はセッションのメールアドレスを保存します。
func (s *LocalStore) Save(ctx context.Context, email string) error {
	return s.kv.Set(ctx, CurrentUserEmailKey, email)
}

// Clear はセッションマーカーを削除します。
func (s *LocalStore) Clear(ctx context.Context) error {
	return s.kv.Remove(ctx, CurrentUserEmailKey)
}
