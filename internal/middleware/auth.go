package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/constants"
	apierrors "github.com/tasklight/tasklight/internal/errors"
	"github.com/tasklight/tasklight/internal/remote"
)

// RequireAuth resolves the session token stored in the cookie session to a
// live backend session and puts the user id in the request context.
func RequireAuth(auth remote.AuthRemote) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(constants.SessionKeyToken).(string)

		remoteSession, err := auth.Session(token)
		if err != nil {
			apierrors.ServiceUnavailable(c, "Failed to check session")
			c.Abort()
			return
		}
		if remoteSession == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, remoteSession.UserID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
