package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestEnv(t *testing.T, oauth remote.OAuthConfig) remote.AuthRemote {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.AuthSession{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return remote.NewAuthRemote(db, oauth)
}

func signInTestUser(t *testing.T, auth remote.AuthRemote, email string) *remote.Session {
	t.Helper()

	_, err := auth.SignUp(email, "test-password", "Test User")
	require.NoError(t, err)
	session, err := auth.SignInWithPassword(email, "test-password")
	require.NoError(t, err)
	return session
}

func TestAuthStoreInitLoadsSessionUser(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})
	session := signInTestUser(t, auth, "init@example.com")

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	require.NoError(t, store.Init(session.Token))

	user := store.User()
	require.NotNil(t, user)
	assert.Equal(t, "init@example.com", user.Email)
	assert.Empty(t, store.LastError())
}

func TestAuthStoreInitWithoutSession(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	require.NoError(t, store.Init(""))

	assert.Nil(t, store.User())
}

func TestAuthStoreIgnoresOtherUsersSessions(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})
	aliceSession := signInTestUser(t, auth, "alice@example.com")

	aliceStore := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	t.Cleanup(aliceStore.Close)
	require.NoError(t, aliceStore.Init(aliceSession.Token))
	aliceID := aliceStore.User().ID

	// Another user signing in over the same remote must not re-point the
	// tracked user.
	bobSession := signInTestUser(t, auth, "bob@example.com")

	user := aliceStore.User()
	require.NotNil(t, user)
	assert.Equal(t, aliceID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	// Nor does their sign-out clear it.
	require.NoError(t, auth.SignOut(bobSession.Token))
	require.NotNil(t, aliceStore.User())

	// Only this store's own session going away does.
	require.NoError(t, auth.SignOut(aliceSession.Token))
	assert.Nil(t, aliceStore.User())
}

func TestAuthStoreFollowsOwnUsersNewSession(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})
	first := signInTestUser(t, auth, "repeat@example.com")

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	t.Cleanup(store.Close)
	require.NoError(t, store.Init(first.Token))

	// The same user signing in again (another device) re-points the store
	// at the fresh session, so revoking the old token no longer signs out.
	second, err := auth.SignInWithPassword("repeat@example.com", "test-password")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	require.NoError(t, auth.SignOut(first.Token))
	require.NotNil(t, store.User())

	require.NoError(t, auth.SignOut(second.Token))
	assert.Nil(t, store.User())
}

func TestAuthStoreCloseStopsTracking(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})
	session := signInTestUser(t, auth, "closed@example.com")

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	require.NoError(t, store.Init(session.Token))
	store.Close()

	require.NoError(t, auth.SignOut(session.Token))
	// The subscription is gone, so the stale user reference stays put.
	assert.NotNil(t, store.User())
}

func TestAuthStoreSignOutClearsUser(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})
	session := signInTestUser(t, auth, "out@example.com")

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	require.NoError(t, store.Init(session.Token))
	require.NotNil(t, store.User())

	require.NoError(t, store.SignOut())

	assert.Nil(t, store.User())
	assert.Empty(t, store.LastError())

	// The token is revoked remotely too.
	remaining, err := auth.Session(session.Token)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestAuthStoreSignInWithGitHub(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{
		GitHubClientID:     "client-123",
		GitHubAuthorizeURL: "https://github.com/login/oauth/authorize",
	})

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	url, err := store.SignInWithGitHub()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://github.com/login/oauth/authorize?"))
	assert.Contains(t, url, "client_id=client-123")
	assert.Empty(t, store.LastError())
	assert.False(t, store.Loading())
}

func TestAuthStoreSignInWithGitHubUnconfigured(t *testing.T) {
	auth := setupAuthTestEnv(t, remote.OAuthConfig{})

	store := NewAuthStore(auth, "http://localhost:8080/auth/callback")
	_, err := store.SignInWithGitHub()

	assert.ErrorIs(t, err, remote.ErrOAuthUnavailable)
	assert.Contains(t, store.LastError(), "Failed to sign in")
}
