package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/dto"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/remote"
	"github.com/tasklight/tasklight/internal/store"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	client      *remote.Client
	callbackURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(client *remote.Client, callbackURL string) *AuthHandler {
	return &AuthHandler{client: client, callbackURL: callbackURL}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.client.Auth.SignUp(req.Email, req.Password, req.FullName)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*profile))
}

// Login authenticates with the password grant and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	remoteSession, err := h.client.Auth.SignInWithPassword(req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, remoteSession.Token)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	profile, err := h.client.Auth.User(remoteSession.Token)
	if err != nil || profile == nil {
		apierrors.InternalError(c, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*profile))
}

// SignInWithGitHub starts the OAuth redirect flow. The response carries the
// provider authorize URL for the view to navigate to.
func (h *AuthHandler) SignInWithGitHub(c *gin.Context) {
	authStore := store.NewAuthStore(h.client.Auth, h.callbackURL)
	url, err := authStore.SignInWithGitHub()
	if err != nil {
		if errors.Is(err, remote.ErrOAuthUnavailable) {
			apierrors.ServiceUnavailable(c, "GitHub sign-in is not configured")
			return
		}
		apierrors.InternalError(c, authStore.LastError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Logout revokes the backend session and clears the cookie session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	token, _ := session.Get(constants.SessionKeyToken).(string)

	authStore := store.NewAuthStore(h.client.Auth, h.callbackURL)
	defer authStore.Close()
	if err := authStore.Init(token); err != nil {
		apierrors.ServiceUnavailable(c, "Failed to check session")
		return
	}
	if err := authStore.SignOut(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.client.Profiles.FindByID(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*profile))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, remote.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, remote.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, remote.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, remote.ErrProfileNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
