package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupValidation(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "not-an-email",
		"password": "test-password",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "short@example.com",
		"password": "tiny",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 8 characters")
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "dup@example.com",
		"password": "test-password",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    "dup@example.com",
		"password": "test-password",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	env := setupHandlerTestEnv(t)
	userID, cookies := env.signupAndLogin(t, "login@example.com")
	require.NotEmpty(t, cookies)

	w := env.do(http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "login@example.com", me.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.signupAndLogin(t, "cred@example.com")

	w := env.do(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "cred@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeWithoutSession(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupHandlerTestEnv(t)
	_, cookies := env.signupAndLogin(t, "logout@example.com")

	w := env.do(http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// The backend session is gone even if a client replays the old cookie.
	w = env.do(http.MethodGet, "/api/auth/me", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGitHubSignInUnconfigured(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/github", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
