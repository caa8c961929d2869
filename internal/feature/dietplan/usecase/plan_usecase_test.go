package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
	"dietguide_backend/internal/feature/dietplan/usecase"
	sessionentity "dietguide_backend/internal/feature/session/domain/entity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockGenerator is a mock implementation of usecase.Generator.
type mockGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, req usecase.GenerationRequest) (string, error)
	Requests     []usecase.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req usecase.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return validPlanJSON, nil
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

var testUser = &sessionentity.User{ID: "u-1", Name: "Alice", Email: "alice@example.com"}

func TestPlanUsecase_RequestPlan_Preconditions(t *testing.T) {
	tests := []struct {
		name      string
		user      *sessionentity.User
		goal      entity.WellnessGoal
		condition string
		nilGen    bool
		wantErr   error
	}{
		{name: "no user", user: nil, goal: entity.GoalBuildMuscle, wantErr: usecase.ErrNotAuthenticated},
		{name: "no goal", user: testUser, goal: "", wantErr: usecase.ErrNoGoalSelected},
		{name: "goal outside the defined set", user: testUser, goal: entity.WellnessGoal("Lose Weight"), wantErr: usecase.ErrNoGoalSelected},
		{name: "manage condition with blank details", user: testUser, goal: entity.GoalManageCondition, condition: "   ", wantErr: usecase.ErrMissingConditionDetails},
		{name: "missing API key", user: testUser, goal: entity.GoalGlowingSkin, nilGen: true, wantErr: usecase.ErrMissingAPIKey},
		{name: "user check comes before goal check", user: nil, goal: "", wantErr: usecase.ErrNotAuthenticated},
		{name: "condition check comes before key check", user: testUser, goal: entity.GoalManageCondition, nilGen: true, wantErr: usecase.ErrMissingConditionDetails},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			var uc *usecase.PlanUsecase
			if tt.nilGen {
				uc = usecase.NewPlanUsecase(nil, usecase.Config{})
			} else {
				uc = usecase.NewPlanUsecase(gen, usecase.Config{})
			}

			plan, err := uc.RequestPlan(context.Background(), tt.user, tt.goal, tt.condition)

			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, gen.calls(), "no remote call on a failed precondition")
		})
	}
}

func TestPlanUsecase_RequestPlan_Success(t *testing.T) {
	gen := &mockGenerator{}
	uc := usecase.NewPlanUsecase(gen, usecase.Config{Model: "test-model"})

	plan, err := uc.RequestPlan(context.Background(), testUser, entity.GoalBuildMuscle, "ignored")

	require.NoError(t, err)
	assert.Equal(t, "Build Muscle", plan.Goal)
	require.Equal(t, 1, gen.calls())

	req := gen.Requests[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, usecase.SystemInstruction, req.SystemInstruction)
	assert.Equal(t, usecase.ResponseMIMETypeJSON, req.ResponseMIMEType)
	assert.Contains(t, req.Prompt, `Based on the wellness goal: "Build Muscle"`)
	assert.NotContains(t, req.Prompt, "ignored", "condition is only sent for ManageCondition")
}

func TestPlanUsecase_RequestPlan_ManageCondition(t *testing.T) {
	gen := &mockGenerator{}
	uc := usecase.NewPlanUsecase(gen, usecase.Config{})

	_, err := uc.RequestPlan(context.Background(), testUser, entity.GoalManageCondition, " Type 2 diabetes ")

	require.NoError(t, err)
	require.Equal(t, 1, gen.calls())
	assert.Equal(t, usecase.DefaultModel, gen.Requests[0].Model)
	assert.Contains(t, gen.Requests[0].Prompt, `"Manage a Specific Health Condition: Type 2 diabetes"`)
	assert.Contains(t, gen.Requests[0].Prompt, `Specifically for the condition: "Type 2 diabetes"`)
}

func TestPlanUsecase_RequestPlan_RemoteErrors(t *testing.T) {
	upstream := errors.New("connection reset by peer")

	tests := []struct {
		name       string
		genErr     error
		wantErr    error
		wantCause  error
		notWrapped bool
	}{
		{name: "invalid key passes through", genErr: usecase.ErrInvalidAPIKey, wantErr: usecase.ErrInvalidAPIKey, notWrapped: true},
		{name: "wrapped invalid key passes through", genErr: errors.Join(usecase.ErrInvalidAPIKey, errors.New("API key not valid")), wantErr: usecase.ErrInvalidAPIKey, notWrapped: true},
		{name: "other failures become upstream errors", genErr: upstream, wantErr: usecase.ErrUpstreamRequestFailed, wantCause: upstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{
				GenerateFunc: func(context.Context, usecase.GenerationRequest) (string, error) {
					return "", tt.genErr
				},
			}
			uc := usecase.NewPlanUsecase(gen, usecase.Config{})

			plan, err := uc.RequestPlan(context.Background(), testUser, entity.GoalHealthyAging, "")

			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
			if tt.notWrapped {
				assert.NotErrorIs(t, err, usecase.ErrUpstreamRequestFailed)
			}
			assert.Equal(t, 1, gen.calls())
		})
	}
}

func TestPlanUsecase_RequestPlan_ResponseValidation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "fenced response", raw: "```json\n" + validPlanJSON + "\n```"},
		{name: "truncated JSON", raw: `{"goal": "Build Muscle", "meals": {`, wantErr: usecase.ErrInvalidResponseFormat},
		{name: "missing lunch", raw: `{"goal":"g","meals":{"breakfast":[],"dinner":[],"snacks":[]},"keyNutrients":[],"foodsToLimit":[],"generalTips":[]}`, wantErr: usecase.ErrIncompleteResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{
				GenerateFunc: func(context.Context, usecase.GenerationRequest) (string, error) {
					return tt.raw, nil
				},
			}
			uc := usecase.NewPlanUsecase(gen, usecase.Config{})

			plan, err := uc.RequestPlan(context.Background(), testUser, entity.GoalBuildMuscle, "")

			if tt.wantErr != nil {
				assert.Nil(t, plan)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, usecase.ErrUpstreamRequestFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Build Muscle", plan.Goal)
		})
	}
}

func TestPlanUsecase_RequestPlan_InFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gen := &mockGenerator{
		GenerateFunc: func(context.Context, usecase.GenerationRequest) (string, error) {
			close(entered)
			<-release
			return validPlanJSON, nil
		},
	}
	uc := usecase.NewPlanUsecase(gen, usecase.Config{})

	type result struct {
		plan *entity.DietPlan
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p, err := uc.RequestPlan(context.Background(), testUser, entity.GoalBuildMuscle, "")
		done <- result{p, err}
	}()

	<-entered
	plan, err := uc.RequestPlan(context.Background(), testUser, entity.GoalGlowingSkin, "")
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, usecase.ErrRequestInFlight)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "Build Muscle", first.plan.Goal)
	assert.Equal(t, 1, gen.calls(), "the rejected request never reached the generator")

	// 完了後は再び受け付ける
	gen.GenerateFunc = nil
	_, err = uc.RequestPlan(context.Background(), testUser, entity.GoalGlowingSkin, "")
	assert.NoError(t, err)
}

func TestPlanUsecase_RequestPlan_Timeout(t *testing.T) {
	gen := &mockGenerator{
		GenerateFunc: func(ctx context.Context, _ usecase.GenerationRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	uc := usecase.NewPlanUsecase(gen, usecase.Config{Timeout: 20 * time.Millisecond})

	plan, err := uc.RequestPlan(context.Background(), testUser, entity.GoalBuildMuscle, "")

	assert.Nil(t, plan)
	assert.ErrorIs(t, err, usecase.ErrUpstreamRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
