package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("segreto")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=65536,t=1,p=4$")

	ok, err := VerifyPassword("segreto", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("sbagliato", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("segreto", "plain")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestBasicAuth(t *testing.T) {
	hash, err := HashPassword("segreto")
	require.NoError(t, err)
	s := newTestServer(t, newTestService(t, &memoryRepo{}), Options{User: "ufficio", PasswordHash: hash})

	request := func(user, pass string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/waiting-list", nil)
		if user != "" {
			req.SetBasicAuth(user, pass)
		}
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, request("", ""))
	assert.Equal(t, http.StatusUnauthorized, request("ufficio", "sbagliato"))
	assert.Equal(t, http.StatusUnauthorized, request("altro", "segreto"))
	assert.Equal(t, http.StatusOK, request("ufficio", "segreto"))

	// healthz без авторизации
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", nil).Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, newTestService(t, &memoryRepo{}), Options{RatePerMinute: 2})

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/waiting-list", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/waiting-list", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodGet, "/api/waiting-list", nil).Code)
}
