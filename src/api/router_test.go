package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fingenius-server/src/db"
	"fingenius-server/src/db/memory"
	"fingenius-server/src/insights"
	mock_insights "fingenius-server/src/insights/mocks"
	"fingenius-server/src/middleware"
	"fingenius-server/src/models"
	"fingenius-server/src/notify"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday; the previous week is Mon 2025-06-09 .. Sun 2025-06-15.
var now = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

type testServer struct {
	t       *testing.T
	handler http.Handler
	gen     *mock_insights.MockGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := memory.New()
	cache, err := db.NewInsightCache(time.Minute)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	gen := mock_insights.NewMockGenerator(ctrl)
	insightSvc := insights.NewService(store, gen, cache, 30)
	deriver := notify.NewDeriver(store, "₹", "en-IN").WithClock(func() time.Time { return now })
	auth := middleware.NewAuth("test-secret", time.Hour)

	return &testServer{
		t:       t,
		handler: NewRouter(store, auth, insightSvc, deriver, []string{"http://localhost:5173"}),
		gen:     gen,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

// signUp registers a user and returns a bearer token for them.
func (s *testServer) signUp(username string) string {
	s.t.Helper()
	email := username + "@example.com"
	rr := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body["message"]
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/transactions", "/api/v1/goals", "/api/v1/notifications", "/api/v1/ai/insights", "/api/v1/user/profile"} {
		rr := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, "Not authorized, no token", message(t, rr))
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.signUp("meera")

	rr := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "other", "email": "MEERA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", message(t, rr))

	rr = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "", "email": "nope", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Username is required, Please include a valid email, Password must be 6 or more characters", message(t, rr))

	rr = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "meera@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", message(t, rr))

	rr = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", message(t, rr))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	rr := s.do(http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode[map[string]any](t, rr)
	assert.Equal(t, "meera", profile["username"])
	assert.NotContains(t, rr.Body.String(), "password")

	rr = s.do(http.MethodPut, "/api/v1/user/profile", token, map[string]string{"email": "meera.new@example.com"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[map[string]string](t, rr)
	assert.Equal(t, "meera", updated["username"])
	assert.Equal(t, "meera.new@example.com", updated["email"])
	require.NotEmpty(t, updated["token"])

	rr = s.do(http.MethodGet, "/api/v1/user/profile", updated["token"], nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "meera.new@example.com", decode[map[string]any](t, rr)["email"])
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	rr := s.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{"type": "expense", "category": "Food"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Please provide all required fields", message(t, rr))

	rr = s.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "transfer", "category": "Food", "amount": 10, "date": "2025-06-10",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"type": "expense", "category": "Food", "amount": 100, "date": "2025-06-10", "description": "Groceries",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	food := decode[models.Transaction](t, rr)
	assert.Equal(t, "Groceries", food.Description)
	assert.Equal(t, "100", food.Amount.String())

	rr = s.do(http.MethodPost, "/api/v1/transactions", token, `{"type":"income","category":"Salary","amount":"5000.50","date":"2025-06-12T09:30:00Z"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	salary := decode[models.Transaction](t, rr)

	rr = s.do(http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]models.Transaction](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, salary.ID, list[0].ID)
	assert.Equal(t, food.ID, list[1].ID)

	rr = s.do(http.MethodPut, "/api/v1/transactions/"+food.ID.String(), token, map[string]any{"category": "NewCat", "amount": 0})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[models.Transaction](t, rr)
	assert.Equal(t, "NewCat", updated.Category)
	assert.Equal(t, "100", updated.Amount.String())
	assert.Equal(t, "Groceries", updated.Description)

	rr = s.do(http.MethodPut, "/api/v1/transactions/not-an-id", token, map[string]any{"category": "X"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid transaction ID", message(t, rr))

	rr = s.do(http.MethodDelete, "/api/v1/transactions/"+food.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Transaction removed", message(t, rr))

	rr = s.do(http.MethodDelete, "/api/v1/transactions/"+food.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Transaction not found", message(t, rr))

	rr = s.do(http.MethodGet, "/api/v1/transactions", token, nil)
	list = decode[[]models.Transaction](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, salary.ID, list[0].ID)
}

func TestTransactionOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("meera")
	intruder := s.signUp("ravi")

	rr := s.do(http.MethodPost, "/api/v1/transactions", owner, map[string]any{
		"type": "expense", "category": "Food", "amount": 100, "date": "2025-06-10",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	txn := decode[models.Transaction](t, rr)

	rr = s.do(http.MethodPut, "/api/v1/transactions/"+txn.ID.String(), intruder, map[string]any{"amount": 1})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "User not authorized", message(t, rr))

	rr = s.do(http.MethodDelete, "/api/v1/transactions/"+txn.ID.String(), intruder, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/api/v1/transactions", intruder, nil)
	assert.Empty(t, decode[[]models.Transaction](t, rr))

	rr = s.do(http.MethodGet, "/api/v1/transactions", owner, nil)
	list := decode[[]models.Transaction](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "100", list[0].Amount.String())
}

func TestGoals(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	rr := s.do(http.MethodGet, "/api/v1/goals", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", strings.TrimSpace(rr.Body.String()))

	rr = s.do(http.MethodPost, "/api/v1/goals", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Please provide a monthlyBudget", message(t, rr))

	rr = s.do(http.MethodPost, "/api/v1/goals", token, map[string]any{"monthlyBudget": -5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var first models.Goal
	for i := 0; i < 2; i++ {
		rr = s.do(http.MethodPost, "/api/v1/goals", token, map[string]any{"monthlyBudget": 20000})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		goal := decode[models.Goal](t, rr)
		if i == 0 {
			first = goal
		}
		assert.Equal(t, first.ID, goal.ID)
	}

	rr = s.do(http.MethodGet, "/api/v1/goals", token, nil)
	goal := decode[models.Goal](t, rr)
	assert.Equal(t, "20000", goal.MonthlyBudget.String())
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	rr := s.do(http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	welcome := decode[[]models.Notification](t, rr)
	require.Len(t, welcome, 1)
	assert.Equal(t, 0, welcome[0].ID)

	for _, body := range []map[string]any{
		{"type": "expense", "category": "Food", "amount": 500, "date": "2025-06-10"},
		{"type": "expense", "category": "Travel", "amount": 700, "date": "2025-06-14"},
		{"type": "expense", "category": "Travel", "amount": 800, "date": "2025-06-17"},
	} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/transactions", token, body).Code)
	}

	rr = s.do(http.MethodGet, "/api/v1/notifications", token, nil)
	list := decode[[]models.Notification](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].ID)
	assert.Contains(t, list[0].Message, "1,200")
	assert.Equal(t, 2, list[1].ID)
	assert.Contains(t, list[1].Message, `"Travel"`)
	assert.Contains(t, list[1].Message, "1,500")
}

func TestInsightsCachedUntilTransactionsChange(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	rr := s.do(http.MethodGet, "/api/v1/ai/insights", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, insights.NoTransactionsMessage, decode[map[string]string](t, rr)["insights"])

	create := map[string]any{"type": "expense", "category": "Food", "amount": 100, "date": "2025-06-10"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/transactions", token, create).Code)

	s.gen.EXPECT().Generate(gomock.Any(), gomock.Len(1), "food?").Return("💡 first", nil)
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Len(2), "food?").Return("💡 second", nil)

	for i := 0; i < 2; i++ {
		rr = s.do(http.MethodGet, "/api/v1/ai/insights?question=food%3F", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "💡 first", decode[map[string]string](t, rr)["insights"])
	}

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/transactions", token, create).Code)

	rr = s.do(http.MethodGet, "/api/v1/ai/insights?question=food%3F", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "💡 second", decode[map[string]string](t, rr)["insights"])
}

func TestInsightsUpstreamBusy(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("meera")

	create := map[string]any{"type": "expense", "category": "Food", "amount": 100, "date": "2025-06-10"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/transactions", token, create).Code)

	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), "").
		DoAndReturn(func(context.Context, []models.Transaction, string) (string, error) {
			return "", &insights.UpstreamError{Provider: "openai", StatusCode: 429, Overloaded: true, Err: assert.AnError}
		})

	rr := s.do(http.MethodGet, "/api/v1/ai/insights", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "AI service is busy, please try again later", message(t, rr))
}
