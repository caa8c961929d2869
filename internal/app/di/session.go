package di

import (
	"context"

	"dietguide_backend/internal/feature/session/adapters"
	"dietguide_backend/internal/feature/session/usecase"
	"dietguide_backend/internal/platform/config"
)

// NewSessionController はストア上にセッションコントローラを構築し、保存済みのセッションを復元します。
func NewSessionController(ctx context.Context, cfg *config.Config, kv adapters.KeyValueStore) (*usecase.SessionController, error) {
	verifier, err := usecase.NewCredentialVerifier(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	local := adapters.NewLocalStore(kv)
	ctrl := usecase.NewSessionController(local, local, verifier)
	ctrl.Restore(ctx)
	return ctrl, nil
}
