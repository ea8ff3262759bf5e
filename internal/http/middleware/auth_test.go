package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/users"
)

func authedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		require.NotEmpty(t, actor.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAcceptsValidToken(t *testing.T) {
	secret := "test-secret"
	u := &users.User{ID: "u1", Role: users.RoleManager}
	token, err := users.IssueToken(secret, u, time.Hour)
	require.NoError(t, err)

	handler := Auth(secret)(authedHandler(t))
	req := httptest.NewRequest("GET", "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	secret := "test-secret"
	handler := Auth(secret)(authedHandler(t))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/leads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	u := &users.User{ID: "u1", Role: users.RoleAdmin}
	token, err := users.IssueToken("other-secret", u, time.Hour)
	require.NoError(t, err)

	handler := Auth("test-secret")(authedHandler(t))
	req := httptest.NewRequest("GET", "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRoles(users.RoleAdmin)(next)

	req := httptest.NewRequest("DELETE", "/api/v1/leads/l1", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{ID: "u1", Role: users.RoleBDExecutive}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest("DELETE", "/api/v1/leads/l1", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{ID: "u2", Role: users.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	// Other IPs are unaffected.
	assert.True(t, rl.Allow("10.0.0.2"))
}
