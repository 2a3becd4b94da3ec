package store

import (
	"sync"

	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

// AuthStore tracks the current user identity and mediates sign-in/out.
type AuthStore struct {
	mu   sync.Mutex
	auth remote.AuthRemote

	token   string
	user    *models.Profile
	loading bool
	lastErr string

	unsubscribe func()

	// callbackURL is the fixed OAuth redirect target.
	callbackURL string
}

func NewAuthStore(auth remote.AuthRemote, callbackURL string) *AuthStore {
	return &AuthStore{auth: auth, callbackURL: callbackURL}
}

// Init fetches the current session user and subscribes to session-change
// notifications, so the held user reference follows this store's own
// session: a sign-out of its token clears the user, a fresh sign-in by the
// same user refreshes token and profile. Changes belonging to other users
// are ignored. Close releases the subscription.
func (s *AuthStore) Init(token string) error {
	s.Close()

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.auth.User(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.unsubscribe = s.auth.OnSessionChange(func(change remote.SessionChange) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if change.Session == nil {
			if change.Token == "" || change.Token != s.token {
				return
			}
			s.user = nil
			s.token = ""
			return
		}
		if s.user == nil || change.UserID != s.user.ID {
			return
		}
		s.token = change.Session.Token
		if user, err := s.auth.User(change.Session.Token); err == nil && user != nil {
			s.user = user
		}
	})
	s.mu.Unlock()
	return nil
}

// Close drops the session-change subscription. Safe to call more than once.
func (s *AuthStore) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// User returns the current user, or nil when signed out.
func (s *AuthStore) User() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *AuthStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AuthStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SignInWithGitHub starts the OAuth redirect flow and returns the provider
// URL to navigate to. Failures are recorded on the store.
func (s *AuthStore) SignInWithGitHub() (string, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	url, err := s.auth.SignInWithOAuth(constants.OAuthProviderGitHub, s.callbackURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = "Failed to sign in: " + err.Error()
		return "", err
	}
	s.lastErr = ""
	return url, nil
}

// SignOut clears the remote session, then the local user reference.
func (s *AuthStore) SignOut() error {
	s.mu.Lock()
	s.loading = true
	token := s.token
	s.mu.Unlock()

	err := s.auth.SignOut(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = "Failed to sign out: " + err.Error()
		return err
	}
	s.lastErr = ""
	s.user = nil
	s.token = ""
	return nil
}
