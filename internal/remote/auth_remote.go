package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password too short")
)

// OAuthConfig holds the provider settings used to build authorize URLs.
type OAuthConfig struct {
	GitHubClientID     string
	GitHubAuthorizeURL string
}

// GormAuthRemote issues sessions against the profiles table. It supports a
// password grant for local development and builds GitHub authorize URLs for
// the OAuth flow.
type GormAuthRemote struct {
	db    *gorm.DB
	oauth OAuthConfig

	mu           sync.Mutex
	nextListener int
	listeners    map[int]func(SessionChange)
}

func NewAuthRemote(db *gorm.DB, oauth OAuthConfig) AuthRemote {
	return &GormAuthRemote{db: db, oauth: oauth, listeners: map[int]func(SessionChange){}}
}

// Session resolves a token to a live session, or (nil, nil).
func (r *GormAuthRemote) Session(token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	var stored models.AuthSession
	if err := r.db.First(&stored, "token = ?", token).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if time.Now().After(stored.ExpiresAt) {
		// Expired sessions are removed lazily on lookup.
		r.db.Delete(&stored)
		return nil, nil
	}

	return &Session{Token: stored.Token, UserID: stored.UserID, ExpiresAt: stored.ExpiresAt}, nil
}

// User returns the profile behind a token, or (nil, nil) when signed out.
func (r *GormAuthRemote) User(token string) (*models.Profile, error) {
	session, err := r.Session(token)
	if err != nil || session == nil {
		return nil, err
	}

	var profile models.Profile
	if err := r.db.First(&profile, "id = ?", session.UserID).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// SignInWithOAuth builds the provider authorize URL for a redirect flow.
func (r *GormAuthRemote) SignInWithOAuth(provider, redirectURL string) (string, error) {
	if provider != constants.OAuthProviderGitHub {
		return "", fmt.Errorf("unsupported oauth provider: %s", provider)
	}
	if r.oauth.GitHubClientID == "" {
		return "", ErrOAuthUnavailable
	}

	params := url.Values{}
	params.Set("client_id", r.oauth.GitHubClientID)
	params.Set("redirect_uri", redirectURL)
	params.Set("scope", "read:user user:email")
	params.Set("state", uuid.NewString())

	return r.oauth.GitHubAuthorizeURL + "?" + params.Encode(), nil
}

// SignUp registers a profile with a password credential.
func (r *GormAuthRemote) SignUp(email, password, fullName string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if err := r.db.Where("email = ?", email).First(&models.Profile{}).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !notFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := models.Profile{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := r.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &profile, nil
}

// SignInWithPassword verifies credentials and issues a session.
func (r *GormAuthRemote) SignInWithPassword(email, password string) (*Session, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error; err != nil {
		if notFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	stored := models.AuthSession{
		Token:     uuid.NewString(),
		UserID:    profile.ID,
		ExpiresAt: time.Now().AddDate(0, 0, constants.SessionTTLDays),
	}
	if err := r.db.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &Session{Token: stored.Token, UserID: stored.UserID, ExpiresAt: stored.ExpiresAt}
	r.notify(SessionChange{Session: session, Token: session.Token, UserID: session.UserID})
	return session, nil
}

// SignOut revokes a session. Revoking an unknown token is a no-op and emits
// no event.
func (r *GormAuthRemote) SignOut(token string) error {
	if token == "" {
		return nil
	}

	var stored models.AuthSession
	if err := r.db.First(&stored, "token = ?", token).Error; err != nil {
		if notFound(err) {
			return nil
		}
		return err
	}
	if err := r.db.Delete(&stored).Error; err != nil {
		return err
	}

	r.notify(SessionChange{Token: stored.Token, UserID: stored.UserID})
	return nil
}

// OnSessionChange registers a callback for sign-in and sign-out events. The
// returned function removes the subscription, so request-scoped subscribers
// do not pile up for the life of the process.
func (r *GormAuthRemote) OnSessionChange(fn func(SessionChange)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *GormAuthRemote) notify(change SessionChange) {
	r.mu.Lock()
	listeners := make([]func(SessionChange), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}
