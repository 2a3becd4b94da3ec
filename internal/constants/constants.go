package constants

// Session and context keys
const (
	SessionName         = "tasklight_session"
	SessionKeyToken     = "session_token"
	ContextKeyUserID    = "user_id"
	ContextKeyWorkspace = "workspace"
	ContextKeyMember    = "workspace_member"
	ContextKeyTask      = "task"
)

// Auth limits
const (
	MinPasswordLength = 8
	SessionTTLDays    = 7
)

// Navigation paths used by the guard
const (
	LoginPath         = "/login"
	OAuthCallbackPath = "/auth/callback"
	HomePath          = "/"
)

// OAuthProviderGitHub is the only OAuth provider currently supported.
const OAuthProviderGitHub = "github"
