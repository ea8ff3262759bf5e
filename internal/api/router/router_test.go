package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/users"
)

const testSecret = "router-test-secret"

type routerFixture struct {
	handler http.Handler
	users   *users.InMemoryRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	userRepo := users.NewInMemoryRepository()
	userSvc := users.NewService(userRepo, nil)
	leadSvc := leads.NewService(leads.NewInMemoryRepository(), userRepo, activity.NewMemoryRecorder(), nil, nil)

	h := New(&Config{
		AuthHandler:   users.NewAuthHandler(userSvc, testSecret, time.Hour, nil),
		UsersHandler:  users.NewHandler(userSvc, nil),
		LeadsHandler:  leads.NewHandler(leadSvc, nil),
		AuthJWTSecret: testSecret,
	})
	return &routerFixture{handler: h, users: userRepo}
}

func (f *routerFixture) addUser(t *testing.T, email string, role users.Role, appPassword string) *users.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &users.User{
		Name:        "Router Test",
		Email:       email,
		Role:        role,
		AppPassword: appPassword,
	})
	require.NoError(t, err)
	return u
}

func (f *routerFixture) token(t *testing.T, u *users.User) string {
	t.Helper()
	token, err := users.IssueToken(testSecret, u, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/leads", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bd := f.addUser(t, "bd@talentbridge.io", users.RoleBDExecutive, "")
	rec = f.do(t, http.MethodGet, "/api/v1/leads", f.token(t, bd), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserManagementIsAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.addUser(t, "admin@talentbridge.io", users.RoleAdmin, "")
	bd := f.addUser(t, "bd@talentbridge.io", users.RoleBDExecutive, "")

	rec := f.do(t, http.MethodGet, "/api/v1/users", f.token(t, bd), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users", f.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	f := newRouterFixture(t)
	f.addUser(t, "manager@talentbridge.io", users.RoleManager, "s3cret")

	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":        "Manager@TalentBridge.io",
		"app_password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Token string      `json:"token"`
		User  *users.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, users.RoleManager, out.User.Role)

	rec = f.do(t, http.MethodGet, "/api/v1/leads", out.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":        "manager@talentbridge.io",
		"app_password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
