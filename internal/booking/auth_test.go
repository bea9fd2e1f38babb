package booking

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_RoundTrip(t *testing.T) {
	tv := NewTokenValidator("test-secret-key-for-unit-tests", "barada-booking")

	token, err := tv.GenerateToken("staff-1", "reception", "staff", time.Hour)
	require.NoError(t, err)

	claims, err := tv.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.UserID)
	assert.Equal(t, "reception", claims.Username)
	assert.Equal(t, "staff", claims.Role)
}

func TestTokenValidator_WrongSecret(t *testing.T) {
	tv := NewTokenValidator("test-secret-key-for-unit-tests", "barada-booking")
	other := NewTokenValidator("a-different-secret-entirely", "barada-booking")

	token, err := tv.GenerateToken("staff-1", "reception", "staff", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenValidator_Expired(t *testing.T) {
	tv := NewTokenValidator("test-secret-key-for-unit-tests", "barada-booking")

	token, err := tv.GenerateToken("staff-1", "reception", "staff", -time.Minute)
	require.NoError(t, err)

	_, err = tv.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenValidator_WrongIssuer(t *testing.T) {
	tv := NewTokenValidator("test-secret-key-for-unit-tests", "someone-else")
	checker := NewTokenValidator("test-secret-key-for-unit-tests", "barada-booking")

	token, err := tv.GenerateToken("staff-1", "reception", "staff", time.Hour)
	require.NoError(t, err)

	_, err = checker.ValidateToken(token)
	assert.Error(t, err)
}

func TestStaffAuthMiddleware(t *testing.T) {
	service, _ := setupTestService()

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = service.getUserIDFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := service.staffAuthMiddleware(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/bookings", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes through with user in context", func(t *testing.T) {
		tv := NewTokenValidator(service.config.JWT.SecretKey, service.config.JWT.Issuer)
		token, err := tv.GenerateToken("staff-7", "reception", "staff", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "staff-7", gotUserID)
	})
}
