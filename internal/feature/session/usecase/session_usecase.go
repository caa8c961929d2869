package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"dietguide_backend/internal/feature/session/domain/entity"
)

const (
	// MinPasswordLength はパスワードの最低文字数（ルーン単位）を定義します。
	MinPasswordLength = 6
	// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数です。スキームに関係なく適用します。
	MaxPasswordBytes = 72
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスに完全一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// SessionRepository は「現在ログイン中のユーザー」マーカーの永続化を抽象化します。
type SessionRepository interface {
	// CurrentEmail は保存されているセッションのメールアドレスを返します。
	// マーカーが存在しない場合、ErrSessionNotFoundを返します。
	CurrentEmail(ctx context.Context) (string, error)

	// Save はセッションのメールアドレスを保存します。
	Save(ctx context.Context, email string) error

	// Clear はセッションマーカーを削除します。存在しない場合も成功します。
	Clear(ctx context.Context) error
}

// Option はSessionControllerの任意設定です。
type Option func(*SessionController)

// WithIDGenerator はユーザーID生成関数を差し替えます（テスト用）。
func WithIDGenerator(fn func() string) Option {
	return func(c *SessionController) {
		c.newID = fn
	}
}

// SessionController はセッションと画面遷移の状態機械です。
// 状態は単一のentity.Stateで保持し、各遷移メソッドが新しい状態とエラーを返します。
// HTTPサーバーから並行に呼ばれるため、状態はミューテックスで保護します。
type SessionController struct {
	mu       sync.Mutex
	users    UserRepository
	sessions SessionRepository
	verifier CredentialVerifier
	newID    func() string
	state    entity.State
}

// NewSessionController はSessionControllerの新しいインスタンスを生成します。
// 初期状態はログイン画面です。永続化されたセッションを復元するにはRestoreを呼び出してください。
func NewSessionController(users UserRepository, sessions SessionRepository, verifier CredentialVerifier, opts ...Option) *SessionController {
	c := &SessionController{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		newID:    uuid.NewString,
		state:    entity.State{View: entity.ViewLogin},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State は現在の状態のスナップショットを返します。
func (c *SessionController) State() entity.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// CurrentUser はログイン中のユーザーを返します。未ログインの場合はnilです。
func (c *SessionController) CurrentUser() *entity.User {
	return c.State().User
}

// Restore は永続化されたセッションから状態を復元します。
// マーカーが無い・壊れている・参照先ユーザーが存在しない場合はすべて「未ログイン」として扱い、エラーは返しません。
// 参照先ユーザーが存在しない場合のみマーカーを削除します。
func (c *SessionController) Restore(ctx context.Context) entity.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	email, err := c.sessions.CurrentEmail(ctx)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			slog.Warn("failed to read session marker", "error", err)
		}
		c.setUnauthenticated(entity.ViewLogin)
		return c.snapshot()
	}

	user, err := c.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			slog.Info("session references unknown user, clearing", "email", email)
			if clearErr := c.sessions.Clear(ctx); clearErr != nil {
				slog.Warn("failed to clear stale session marker", "error", clearErr)
			}
		} else {
			slog.Warn("failed to look up session user", "error", err, "email", email)
		}
		c.setUnauthenticated(entity.ViewLogin)
		return c.snapshot()
	}

	c.setAuthenticated(user)
	return c.snapshot()
}

// Login はメールアドレスとパスワードで認証します。
// タイミング攻撃を避けるため、ユーザーが存在しない場合でも照合処理を実行します。
// 失敗時はErrInvalidCredentialsを返し、状態は変更しません。
func (c *SessionController) Login(ctx context.Context, email, password string) (entity.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, err := c.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return c.snapshot(), fmt.Errorf("failed to look up user: %w", err)
	}

	stored := ""
	if user != nil {
		stored = user.PasswordHash
	}
	matched := c.verifier.Verify(stored, password)

	if user == nil || !matched {
		return c.snapshot(), ErrInvalidCredentials
	}

	if err := c.sessions.Save(ctx, user.Email); err != nil {
		return c.snapshot(), fmt.Errorf("failed to save session: %w", err)
	}
	c.setAuthenticated(user)
	return c.snapshot(), nil
}

// Register は新規ユーザーを登録し、そのままログイン状態にします。
// 同じメールアドレスが既に存在する場合はErrEmailAlreadyExistsを返し、ユーザー一覧は変更しません。
func (c *SessionController) Register(ctx context.Context, name, email, password string) (entity.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if utf8.RuneCountInString(password) < MinPasswordLength {
		return c.snapshot(), ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return c.snapshot(), ErrPasswordTooLong
	}

	if _, err := c.users.FindByEmail(ctx, email); err == nil {
		return c.snapshot(), ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return c.snapshot(), fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := c.verifier.Hash(password)
	if err != nil {
		return c.snapshot(), err
	}

	user := &entity.User{
		ID:           c.newID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := c.users.Create(ctx, user); err != nil {
		return c.snapshot(), err
	}

	if err := c.sessions.Save(ctx, user.Email); err != nil {
		return c.snapshot(), fmt.Errorf("failed to save session: %w", err)
	}
	c.setAuthenticated(user)
	return c.snapshot(), nil
}

// Logout はセッションを破棄してログイン画面に戻します。
// 未ログイン状態で呼ばれた場合は何もしません（冪等）。
func (c *SessionController) Logout(ctx context.Context) (entity.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.User == nil {
		c.state.View = entity.ViewLogin
		return c.snapshot(), nil
	}

	if err := c.sessions.Clear(ctx); err != nil {
		return c.snapshot(), fmt.Errorf("failed to clear session: %w", err)
	}
	c.setUnauthenticated(entity.ViewLogin)
	return c.snapshot(), nil
}

// ShowRegister は登録画面へ遷移します。ログイン中は無視されます。
func (c *SessionController) ShowRegister() entity.State {
	return c.navigate(entity.ViewRegister)
}

// ShowLogin はログイン画面へ遷移します。ログイン中は無視されます。
func (c *SessionController) ShowLogin() entity.State {
	return c.navigate(entity.ViewLogin)
}

func (c *SessionController) navigate(view entity.View) entity.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		c.state.View = view
	}
	return c.snapshot()
}

// setAuthenticated and setUnauthenticated must be called with mu held.
func (c *SessionController) setAuthenticated(user *entity.User) {
	u := *user
	c.state = entity.State{View: entity.ViewApp, User: &u, Epoch: c.state.Epoch + 1}
}

func (c *SessionController) setUnauthenticated(view entity.View) {
	epoch := c.state.Epoch
	if c.state.User != nil {
		epoch++
	}
	c.state = entity.State{View: view, Epoch: epoch}
}

// snapshot copies the user so callers cannot mutate controller state.
func (c *SessionController) snapshot() entity.State {
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
