package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
	planhandler "dietguide_backend/internal/feature/dietplan/transport/handler"
	planusecase "dietguide_backend/internal/feature/dietplan/usecase"
	"dietguide_backend/internal/feature/session/adapters"
	sessionhandler "dietguide_backend/internal/feature/session/transport/handler"
	sessionusecase "dietguide_backend/internal/feature/session/usecase"
	"dietguide_backend/internal/platform/http/handler"
	jwtmw "dietguide_backend/internal/platform/jwt"
	"dietguide_backend/internal/platform/kvstore"
)

const testSecret = "router-test-secret"

const planJSON = `{"goal":"Glowing Skin","overview":"o","meals":{"breakfast":[],"lunch":[],"dinner":[],"snacks":[]},"keyNutrients":[],"foodsToLimit":[],"generalTips":["drink water"]}`

// stubGenerator returns a fixed plan document.
type stubGenerator struct{ calls int }

func (s *stubGenerator) Generate(context.Context, planusecase.GenerationRequest) (string, error) {
	s.calls++
	return planJSON, nil
}

// newTestEngine wires the real controller and pipeline on an in-memory store.
func newTestEngine(t *testing.T, gen planusecase.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := kvstore.NewMemory()
	local := adapters.NewLocalStore(kv)
	ctrl := sessionusecase.NewSessionController(local, local, sessionusecase.PlaintextVerifier{})
	ctrl.Restore(context.Background())

	plans := planusecase.NewPlanUsecase(gen, planusecase.Config{Timeout: time.Second})

	return NewRouter(
		handler.NewHealthHandler("memory", kv),
		sessionhandler.NewSessionHandler(ctrl, jwtmw.NewGenerator(testSecret, time.Hour)),
		planhandler.NewPlanHandler(plans, ctrl),
		Options{JWTSecret: testSecret},
	)
}

func call(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRouter_RegisterPlanLogout(t *testing.T) {
	gen := &stubGenerator{}
	r := newTestEngine(t, gen)

	w := call(r, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/register", gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := tokenFrom(t, w)

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "glowing-skin"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "plans require a bearer token")

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "glowing-skin"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var plan entity.DietPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, []string{"drink water"}, plan.GeneralTips)

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "manage-condition", "conditionDetails": " "}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, gen.calls, "blank condition never reaches the generator")

	w = call(r, http.MethodPost, "/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "glowing-skin"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token of a logged-out user is rejected")

	w = call(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "wrong1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/login", gin.H{"email": "alice@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	freshToken := tokenFrom(t, w)

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "glowing-skin"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token issued before logout stays revoked after re-login")

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "glowing-skin"}, freshToken)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodGet, "/session", nil, "")
	assert.Contains(t, w.Body.String(), `"view":"app"`)
	assert.NotContains(t, w.Body.String(), "secret1")
}

func TestRouter_MissingAPIKey(t *testing.T) {
	r := newTestEngine(t, nil)

	w := call(r, http.MethodPost, "/register", gin.H{"email": "bob@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := tokenFrom(t, w)

	w = call(r, http.MethodPost, "/plans", gin.H{"goal": "Healthy Aging"}, token)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"API key is not configured"}`, w.Body.String())
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	r := newTestEngine(t, &stubGenerator{})
	body := gin.H{"email": "carol@example.com", "password": "secret1"}

	w := call(r, http.MethodPost, "/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/logout", nil, tokenFrom(t, w)).Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/session/view", gin.H{"view": "register"}, "").Code)
	w = call(r, http.MethodPost, "/register", body, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodGet, "/session", nil, "")
	assert.Contains(t, w.Body.String(), `"view":"register"`, "failed registration stays on the register view")
}
