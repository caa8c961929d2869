package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planusecase "dietguide_backend/internal/feature/dietplan/usecase"
	"dietguide_backend/internal/feature/session/adapters"
	sessionusecase "dietguide_backend/internal/feature/session/usecase"
	"dietguide_backend/internal/platform/kvstore"
)

const cliPlanJSON = `{"goal":"Build Muscle","overview":"Eat more protein.","meals":{"breakfast":[{"food":"Eggs","benefit":"Complete protein."}],"lunch":[],"dinner":[],"snacks":[]},"keyNutrients":[],"foodsToLimit":[],"generalTips":["Sleep well."]}`

// stubGenerator is a mock implementation of planusecase.Generator.
type stubGenerator struct {
	GenerateFunc func(ctx context.Context, req planusecase.GenerationRequest) (string, error)
	Calls        int
}

func (s *stubGenerator) Generate(ctx context.Context, req planusecase.GenerationRequest) (string, error) {
	s.Calls++
	if s.GenerateFunc != nil {
		return s.GenerateFunc(ctx, req)
	}
	return cliPlanJSON, nil
}

// testEnv keeps the store between invocations so every run restores the session like a new process would.
type testEnv struct {
	kv  *kvstore.Memory
	gen planusecase.Generator
}

func (e *testEnv) loader(ctx context.Context, _ io.Writer) (*app, error) {
	local := adapters.NewLocalStore(e.kv)
	session := sessionusecase.NewSessionController(local, local, sessionusecase.PlaintextVerifier{})
	session.Restore(ctx)
	return &app{session: session, plans: planusecase.NewPlanUsecase(e.gen, planusecase.Config{})}, nil
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, closeApp := newRootCmd(e.loader)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	require.NoError(t, closeApp())
	return out.String(), err
}

func TestCLI_SessionRoundTrip(t *testing.T) {
	env := &testEnv{kv: kvstore.NewMemory(), gen: &stubGenerator{}}

	out, err := env.run(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)

	out, err = env.run(t, "register", "--name", "Alice", "--email", "alice@example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Alice!\n", out)

	out, err = env.run(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Alice <alice@example.com>\n", out, "session is restored on the next run")

	_, err = env.run(t, "logout")
	require.NoError(t, err)
	_, err = env.run(t, "logout")
	require.NoError(t, err, "logout twice is safe")

	_, err = env.run(t, "login", "--email", "alice@example.com", "--password", "nope")
	assert.ErrorIs(t, err, sessionusecase.ErrInvalidCredentials)

	out, err = env.run(t, "login", "--email", "alice@example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, Alice!\n", out)
}

func TestCLI_RegisterErrors(t *testing.T) {
	env := &testEnv{kv: kvstore.NewMemory(), gen: &stubGenerator{}}

	_, err := env.run(t, "register", "--email", "a@example.com", "--password", "abc")
	assert.ErrorIs(t, err, sessionusecase.ErrWeakPassword)

	_, err = env.run(t, "register", "--email", "a@example.com", "--password", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, sessionusecase.ErrPasswordTooLong)
	assert.Equal(t, "password must be at most 72 bytes long", userMessage(err))

	_, err = env.run(t, "register", "--email", "a@example.com", "--password", "secret1", "--confirm-password", "secret2")
	assert.EqualError(t, err, "passwords do not match")

	_, err = env.run(t, "register", "--email", "a@example.com", "--password", "secret1")
	require.NoError(t, err)
	_, err = env.run(t, "logout")
	require.NoError(t, err)

	_, err = env.run(t, "register", "--email", "a@example.com", "--password", "other1")
	assert.ErrorIs(t, err, sessionusecase.ErrEmailAlreadyExists)
}

func TestCLI_Plan(t *testing.T) {
	gen := &stubGenerator{}
	env := &testEnv{kv: kvstore.NewMemory(), gen: gen}

	_, err := env.run(t, "plan", "--goal", "build-muscle")
	assert.ErrorIs(t, err, planusecase.ErrNotAuthenticated)

	_, err = env.run(t, "register", "--email", "a@example.com", "--password", "secret1")
	require.NoError(t, err)

	_, err = env.run(t, "plan", "--goal", "manage-condition")
	assert.ErrorIs(t, err, planusecase.ErrMissingConditionDetails)
	assert.Equal(t, 0, gen.Calls)

	_, err = env.run(t, "plan")
	assert.ErrorIs(t, err, planusecase.ErrNoGoalSelected)

	_, err = env.run(t, "plan", "--goal", "levitation")
	assert.Error(t, err)

	out, err := env.run(t, "plan", "--goal", "build-muscle", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# Your Diet Plan: Build Muscle")
	assert.Contains(t, out, "- **Eggs**: Complete protein.")
	assert.Equal(t, 1, gen.Calls)
}

func TestCLI_PlanMissingKey(t *testing.T) {
	env := &testEnv{kv: kvstore.NewMemory(), gen: nil}
	_, err := env.run(t, "register", "--email", "a@example.com", "--password", "secret1")
	require.NoError(t, err)

	_, err = env.run(t, "plan", "--goal", "glowing-skin")

	assert.ErrorIs(t, err, planusecase.ErrMissingAPIKey)
	assert.Equal(t, "API key is not configured", userMessage(err))
}

func TestCLI_Goals(t *testing.T) {
	env := &testEnv{kv: kvstore.NewMemory()}

	out, err := env.run(t, "goals")

	require.NoError(t, err)
	assert.Contains(t, out, "build-muscle")
	assert.Contains(t, out, "manage-condition   Manage a Specific Health Condition (requires --condition)")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped upstream", fmt.Errorf("%w: %w", planusecase.ErrUpstreamRequestFailed, errors.New("dial tcp: timeout")), "failed to fetch diet plan from AI"},
		{"incomplete", fmt.Errorf("%w: meal categories are missing (lunch)", planusecase.ErrIncompleteResponse), "AI returned data in an unexpected format"},
		{"credentials", sessionusecase.ErrInvalidCredentials, "invalid email or password"},
		{"other", errors.New(" required flag(s) \"email\" not set "), `required flag(s) "email" not set`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
