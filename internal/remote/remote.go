// Package remote defines the contract the application consumes from its
// system of record: row storage for tasks, workspaces, members, comments and
// profiles, plus session issuance. Mutations return the row as stored, so
// callers always see backend-assigned ids and timestamps.
package remote

import (
	"errors"
	"time"

	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyMember    = errors.New("user is already a member of this workspace")
	ErrProfileNotFound  = errors.New("no profile with that email")
	ErrInvalidInvite    = errors.New("invalid invite code")
	ErrOAuthUnavailable = errors.New("oauth provider is not configured")
)

// Session identifies an authenticated user until ExpiresAt.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// SessionChange describes a sign-in or sign-out event. Session is nil for a
// sign-out; Token and UserID always identify the affected session, so
// subscribers can ignore changes that belong to someone else.
type SessionChange struct {
	Session *Session
	Token   string
	UserID  string
}

// TaskListScope selects which tasks a List call returns. When WorkspaceID is
// set the scope is that workspace; otherwise it is the user's unassigned
// tasks plus the tasks of every workspace the user belongs to.
type TaskListScope struct {
	WorkspaceID *string
	UserID      string
}

// TaskRemote stores tasks. List orders by creation time descending.
type TaskRemote interface {
	List(scope TaskListScope) ([]models.Task, error)
	FindByID(id string) (*models.Task, error)
	Insert(task *models.Task) (*models.Task, error)
	// Update applies a partial row update and returns the stored row.
	// Column names are the row's snake_case attribute names.
	Update(id string, fields map[string]any) (*models.Task, error)
	// Delete removes a task; deleting an absent id is not an error.
	Delete(id string) error
}

// WorkspaceRemote stores workspaces and their membership rows.
type WorkspaceRemote interface {
	ListForUser(userID string) ([]models.Workspace, []models.WorkspaceMember, error)
	// Insert stores the workspace and its owner membership in one transaction.
	Insert(workspace *models.Workspace) (*models.Workspace, error)
	FindByID(id string) (*models.Workspace, error)
	FindByInviteCode(code string) (*models.Workspace, error)
	AddMember(member *models.WorkspaceMember) (*models.WorkspaceMember, error)
	RemoveMember(workspaceID, userID string) error
	FindMember(workspaceID, userID string) (*models.WorkspaceMember, error)
	ListMembers(workspaceID string) ([]models.WorkspaceMember, error)
}

// CommentRemote stores task comments. Rows carry the author profile.
type CommentRemote interface {
	ListForTask(taskID string) ([]models.Comment, error)
	Insert(comment *models.Comment) (*models.Comment, error)
	Update(id string, content string) (*models.Comment, error)
	Delete(id string) error
	FindByID(id string) (*models.Comment, error)
}

// ProfileRemote reads and writes user profiles.
type ProfileRemote interface {
	FindByID(id string) (*models.Profile, error)
	FindByEmail(email string) (*models.Profile, error)
}

// AuthRemote issues and resolves sessions.
type AuthRemote interface {
	// Session resolves a token; it returns (nil, nil) when no session exists.
	Session(token string) (*Session, error)
	// User returns the profile behind a session token, or (nil, nil).
	User(token string) (*models.Profile, error)
	// SignInWithOAuth returns the provider authorize URL to redirect to.
	SignInWithOAuth(provider, redirectURL string) (string, error)
	SignUp(email, password, fullName string) (*models.Profile, error)
	SignInWithPassword(email, password string) (*Session, error)
	SignOut(token string) error
	// OnSessionChange registers a callback invoked after every sign-in and
	// sign-out. The returned function removes the subscription.
	OnSessionChange(fn func(SessionChange)) (unsubscribe func())
}

// Client bundles the remote interfaces for injection.
type Client struct {
	Tasks      TaskRemote
	Workspaces WorkspaceRemote
	Comments   CommentRemote
	Profiles   ProfileRemote
	Auth       AuthRemote
}

// NewGormClient builds a Client backed by the given database.
func NewGormClient(db *gorm.DB, oauth OAuthConfig) *Client {
	return &Client{
		Tasks:      NewTaskRemote(db),
		Workspaces: NewWorkspaceRemote(db),
		Comments:   NewCommentRemote(db),
		Profiles:   NewProfileRemote(db),
		Auth:       NewAuthRemote(db, oauth),
	}
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
