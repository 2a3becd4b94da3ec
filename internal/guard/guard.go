// Package guard gates navigation to routes that require authentication,
// redirecting unauthenticated attempts to the login view. It never lets a
// session-retrieval failure abort navigation.
package guard

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/remote"
)

// Guard checks the remote session for each navigation attempt.
type Guard struct {
	auth remote.AuthRemote

	loginPath    string
	callbackPath string
	homePath     string
	public       map[string]struct{}
}

func New(auth remote.AuthRemote) *Guard {
	return &Guard{
		auth:         auth,
		loginPath:    constants.LoginPath,
		callbackPath: constants.OAuthCallbackPath,
		homePath:     constants.HomePath,
		public: map[string]struct{}{
			constants.LoginPath:         {},
			constants.OAuthCallbackPath: {},
		},
	}
}

// Middleware runs the per-navigation state machine:
//
//  1. On the OAuth callback path, or when the request carries an
//     access-token marker, an existing session redirects straight to the
//     main task view.
//  2. A protected path without a session redirects to the login view with
//     an error query parameter.
//  3. A session-retrieval failure also redirects to login, with the
//     message attached.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		token := sessionToken(c)

		if path == g.callbackPath || hasAccessTokenMarker(c.Request) {
			session, err := g.auth.Session(token)
			if err != nil {
				g.toLogin(c, err.Error())
				return
			}
			if session != nil {
				c.Redirect(http.StatusFound, g.homePath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if _, ok := g.public[path]; ok {
			c.Next()
			return
		}

		session, err := g.auth.Session(token)
		if err != nil {
			g.toLogin(c, err.Error())
			return
		}
		if session == nil {
			g.toLogin(c, "Please sign in to continue")
			return
		}

		c.Set(constants.ContextKeyUserID, session.UserID)
		c.Next()
	}
}

func (g *Guard) toLogin(c *gin.Context, message string) {
	target := g.loginPath + "?error=" + url.QueryEscape(message)
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// hasAccessTokenMarker reports whether the request carries an OAuth
// access-token marker in its query or fragment-turned-query string.
func hasAccessTokenMarker(r *http.Request) bool {
	return r.URL.Query().Has("access_token")
}

func sessionToken(c *gin.Context) string {
	session := sessions.Default(c)
	token, _ := session.Get(constants.SessionKeyToken).(string)
	return token
}
