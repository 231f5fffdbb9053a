package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common/security"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/repository"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/config"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/database"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/logger"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	tokens  *security.TokenIssuer
	users   *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.db")
	require.NoError(t, database.Migrate(config.DriverSQLite, path))
	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	userRepo := repository.NewSQLUserRepository(db, database.SQLite)
	expenseRepo := repository.NewSQLExpenseRepository(db, database.SQLite)
	tokens := security.NewTokenIssuer([]byte("router-test-secret"))

	userSvc := service.NewUserService(userRepo, log)
	svc := Services{
		Auth:    service.NewAuthService(userRepo, userSvc, tokens, security.NewMemoryAttemptLimiter(3, time.Minute), log),
		User:    userSvc,
		Expense: service.NewExpenseService(expenseRepo, userRepo, log),
		Report:  service.NewReportService(expenseRepo, userRepo, log),
	}
	return &testServer{t: t, handler: NewRouter(svc, tokens, db, log), tokens: tokens, users: userSvc}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
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

// seedUser creates an account directly and returns it with a valid token.
func (s *testServer) seedUser(email string, role model.Role) (*model.User, string) {
	s.t.Helper()
	salary := model.MustMoney("5000.00")
	u, err := s.users.Create(context.Background(), service.CreateUserRequest{
		Name: "User " + email, Email: email, Password: "secret123", GrossSalary: &salary, Role: string(role),
	})
	require.NoError(s.t, err)
	token, err := s.tokens.IssueToken(u.ID, u.Email, u.Role)
	require.NoError(s.t, err)
	return u, token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "OK", body["status"])
	assert.Contains(t, body, "timestamp")
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "route not found", decode(t, rr)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/auth/me", "/api/expenses", "/api/users", "/api/reports/summary"} {
		rr := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = s.do(http.MethodGet, path, "garbage.token.value", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name": "Maria", "email": "maria@email.com", "password": "secret123", "gross_salary": 5000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.NotEmpty(t, body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "maria@email.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "HashedPassword")

	rr = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "maria@email.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := decode(t, rr)["token"].(string)

	rr = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.Equal(t, user["id"], me["userId"])
	assert.Equal(t, "normal", me["role"])

	rr = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "maria@email.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginTooManyAttempts(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("brute@email.com", model.RoleNormal)

	for i := 0; i < 3; i++ {
		rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "brute@email.com", "password": "bad"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "brute@email.com", "password": "secret123"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]interface{}{"name": "Ana", "email": "ana@email.com", "password": "pw123456", "gross_salary": "1000.00"}

	rr := s.do(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	firstID := decode(t, rr)["user"].(map[string]interface{})["id"]

	payload["name"] = "Impostor"
	rr = s.do(http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rr.Code)

	_, adminToken := s.seedUser("root@email.com", model.RoleAdmin)
	rr = s.do(http.MethodGet, "/api/users/"+firstID.(string), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ana", decode(t, rr)["name"])
}

func TestRegisterAdminNeedsAdminToken(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]interface{}{"name": "Boss", "email": "boss@email.com", "password": "pw", "gross_salary": 1, "role": "admin"}

	rr := s.do(http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	_, adminToken := s.seedUser("root@email.com", model.RoleAdmin)
	rr = s.do(http.MethodPost, "/api/auth/register", adminToken, payload)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestNormalUserCannotReadOthersExpenses(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.seedUser("alice@email.com", model.RoleNormal)
	bob, bobToken := s.seedUser("bob@email.com", model.RoleNormal)

	rr := s.do(http.MethodPost, "/api/expenses", bobToken, map[string]interface{}{
		"user_id": bob.ID, "description": "Mercado", "amount": 42.5, "expense_date": "2024-02-10",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	expenseID := decode(t, rr)["id"].(string)

	rr = s.do(http.MethodGet, "/api/expenses?userId="+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/api/expenses/"+expenseID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodDelete, "/api/expenses/"+expenseID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPost, "/api/expenses", aliceToken, map[string]interface{}{
		"user_id": bob.ID, "description": "Sneaky", "amount": 1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/api/reports/summary?userId="+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/api/users/"+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/api/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPut, "/api/expenses/"+expenseID, aliceToken, map[string]interface{}{"amount": 1})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPut, "/api/users/"+bob.ID, aliceToken, map[string]interface{}{"name": "Hacked"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodDelete, "/api/users/"+bob.ID, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPost, "/api/users", aliceToken, map[string]interface{}{
		"name": "Eve", "email": "eve@email.com", "gross_salary": 1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Nothing above may have changed bob's data.
	rr = s.do(http.MethodGet, "/api/expenses/"+expenseID, bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 42.5, decode(t, rr)["amount"])

	rr = s.do(http.MethodGet, "/api/users/"+bob.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "User bob@email.com", decode(t, rr)["name"])
}

func TestExpenseLifecycleAndReports(t *testing.T) {
	s := newTestServer(t)
	u, token := s.seedUser("flow@email.com", model.RoleNormal)

	for _, e := range []map[string]interface{}{
		{"description": "Cinema", "amount": "75.00", "expense_type": "CREDIT_CARD", "expense_date": "2024-02-03", "category": "Lazer"},
		{"description": "Aluguel", "amount": 1500, "expense_type": "MONTHLY", "expense_date": "2024-02-05", "category": "Moradia"},
		{"description": "Mercado", "amount": 320.5, "expense_type": "PIX_DEBIT", "expense_date": "2024-02-29T22:00:00Z"},
	} {
		e["user_id"] = u.ID
		rr := s.do(http.MethodPost, "/api/expenses", token, e)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := s.do(http.MethodGet, "/api/expenses?month=2&year=2024", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Mercado", list[0]["description"])

	rr = s.do(http.MethodGet, "/api/reports/summary?month=2&year=2024", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"total_expenses":1895.50`)
	assert.Contains(t, rr.Body.String(), `"percentage_committed":37.91`)
	assert.Contains(t, rr.Body.String(), `"remaining":3104.50`)
	assert.Contains(t, rr.Body.String(), `"Sem categoria"`)

	rr = s.do(http.MethodGet, "/api/reports/by-type?userId="+u.ID+"&month=2&year=2024", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"credit_card":75.00,"monthly":1500.00,"pix_debit":320.50}`, rr.Body.String())

	rr = s.do(http.MethodGet, "/api/reports/monthly-history?year=2024", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history, 12)
	assert.EqualValues(t, 2, history[1]["month"])
	assert.EqualValues(t, 3, history[1]["count"])

	expenseID := list[0]["id"].(string)
	rr = s.do(http.MethodPut, "/api/expenses/"+expenseID, token, map[string]interface{}{"description": "Feira"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Feira", decode(t, rr)["description"])

	rr = s.do(http.MethodDelete, "/api/expenses/"+expenseID, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodGet, "/api/expenses/"+expenseID, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodGet, "/api/expenses?month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminManagesUsers(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seedUser("admin@email.com", model.RoleAdmin)

	rr := s.do(http.MethodPost, "/api/users", adminToken, map[string]interface{}{
		"name": "Carlos", "email": "carlos@email.com", "gross_salary": 3200,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	carlosID := decode(t, rr)["id"].(string)

	rr = s.do(http.MethodPost, "/api/users", adminToken, map[string]interface{}{
		"name": "Long", "email": "long@email.com", "gross_salary": 1, "password": strings.Repeat("x", 100),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/api/expenses", adminToken, map[string]interface{}{
		"user_id": carlosID, "description": "Plano de saúde", "amount": 300, "expense_type": "MONTHLY",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPut, "/api/users/"+carlosID, adminToken, map[string]interface{}{"gross_salary": 3500})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 3500, decode(t, rr)["gross_salary"])

	rr = s.do(http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	rr = s.do(http.MethodDelete, "/api/users/"+carlosID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodDelete, "/api/users/"+carlosID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.do(http.MethodGet, "/api/users/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
