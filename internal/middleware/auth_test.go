package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func contextWithUser(r *http.Request, user string) context.Context {
	return context.WithValue(r.Context(), UserKey, user)
}

func authedHandler(t *testing.T, gotUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"u-1": "secret-key"}

	t.Run("bearer token binds the user", func(t *testing.T) {
		var user string
		h := APIKeyAuth(keys)(authedHandler(t, &user))
		req := httptest.NewRequest(http.MethodGet, "/v1/u-1/dashboard", nil)
		req.Header.Set("Authorization", "Bearer secret-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u-1", user)
	})

	t.Run("bare key accepted", func(t *testing.T) {
		var user string
		h := APIKeyAuth(keys)(authedHandler(t, &user))
		req := httptest.NewRequest(http.MethodGet, "/v1/u-1/dashboard", nil)
		req.Header.Set("Authorization", "secret-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		var user string
		h := APIKeyAuth(keys)(authedHandler(t, &user))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/u-1/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		var user string
		h := APIKeyAuth(keys)(authedHandler(t, &user))
		req := httptest.NewRequest(http.MethodGet, "/v1/u-1/dashboard", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health check bypasses auth", func(t *testing.T) {
		var user string
		h := APIKeyAuth(keys)(authedHandler(t, &user))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireMatchingUser(t *testing.T) {
	urlUser := func(r *http.Request) string { return r.URL.Query().Get("u") }
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireMatchingUser(urlUser)(next)

	t.Run("matching user passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/x?u=u-1", nil)
		req = req.WithContext(contextWithUser(req, "u-1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("mismatch is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/x?u=u-2", nil)
		req = req.WithContext(contextWithUser(req, "u-1"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated request passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/x?u=u-2", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
