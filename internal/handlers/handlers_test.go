package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// handlerTestEnv carries a full router over an in-memory backend, wired the
// same way as the server entry point.
type handlerTestEnv struct {
	db     *gorm.DB
	client *remote.Client
	router *gin.Engine
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.Profile{},
		&models.AuthSession{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Task{},
		&models.Comment{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	client := remote.NewGormClient(db, remote.OAuthConfig{})

	authHandler := NewAuthHandler(client, "http://localhost:8080/auth/callback")
	taskHandler := NewTaskHandler(client, nil)
	workspaceHandler := NewWorkspaceHandler(client)
	commentHandler := NewCommentHandler(client)

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("test-secret"))))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/github", authHandler.SignInWithGitHub)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.RequireAuth(client.Auth), authHandler.GetCurrentUser)

	workspaces := api.Group("/workspaces")
	workspaces.Use(middleware.RequireAuth(client.Auth))
	workspaces.POST("", workspaceHandler.CreateWorkspace)
	workspaces.GET("", workspaceHandler.ListWorkspaces)
	workspaces.POST("/join", workspaceHandler.JoinWorkspace)
	workspaces.GET("/:id", middleware.RequireWorkspaceAccess(client.Workspaces), workspaceHandler.GetWorkspace)
	workspaces.POST("/:id/invite", middleware.RequireWorkspaceAccess(client.Workspaces), middleware.RequireWorkspaceManager(), workspaceHandler.InviteMember)
	workspaces.DELETE("/:id/members/:user_id", middleware.RequireWorkspaceAccess(client.Workspaces), middleware.RequireWorkspaceManager(), workspaceHandler.RemoveMember)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.RequireAuth(client.Auth))
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.POST("/suggest", taskHandler.SuggestTasks)
	tasks.GET("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.GetTask)
	tasks.PATCH("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.UpdateTask)
	tasks.DELETE("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.DeleteTask)
	tasks.GET("/:id/comments", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.ListComments)
	tasks.POST("/:id/comments", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.CreateComment)
	tasks.PATCH("/:id/comments/:comment_id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.UpdateComment)
	tasks.DELETE("/:id/comments/:comment_id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.DeleteComment)

	return &handlerTestEnv{db: db, client: client, router: router}
}

// do issues a request and returns the recorder. A nil body sends no payload.
func (env *handlerTestEnv) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin registers a user and returns their id plus the session
// cookies subsequent requests authenticate with.
func (env *handlerTestEnv) signupAndLogin(t *testing.T, email string) (string, []*http.Cookie) {
	t.Helper()

	w := env.do(http.MethodPost, "/api/auth/signup", gin.H{
		"email":    email,
		"password": "test-password",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": "test-password",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.NotEmpty(t, user.ID)
	return user.ID, w.Result().Cookies()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
