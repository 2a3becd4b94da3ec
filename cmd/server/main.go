package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/config"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/database"
	"github.com/tasklight/tasklight/internal/guard"
	"github.com/tasklight/tasklight/internal/handlers"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/remote"
	"github.com/tasklight/tasklight/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware: Redis when configured, cookies otherwise
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		store, err = redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			log.Fatalf("Failed to create Redis store: %v", err)
		}
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * constants.SessionTTLDays,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Remote data service backed by the database
	client := remote.NewGormClient(db, remote.OAuthConfig{
		GitHubClientID:     cfg.GitHubClientID,
		GitHubAuthorizeURL: cfg.GitHubAuthorizeURL,
	})

	// Initialize suggestion service
	var suggestService *services.SuggestService
	if cfg.OpenAIAPIKey != "" {
		suggestService = services.NewSuggestService(cfg.OpenAIAPIKey)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(client, cfg.OAuthCallbackURL)
	taskHandler := handlers.NewTaskHandler(client, suggestService)
	workspaceHandler := handlers.NewWorkspaceHandler(client)
	commentHandler := handlers.NewCommentHandler(client)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Tasklight API is running",
		})
	})

	// Navigation routes gated by the guard: unauthenticated access to a view
	// redirects to the login view, the OAuth callback bounces signed-in
	// users back to the task list.
	nav := guard.New(client.Auth)
	pages := r.Group("/")
	pages.Use(nav.Middleware())
	{
		pages.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{"view": "tasks"})
		})
		pages.GET("/tasks/create", func(c *gin.Context) {
			c.JSON(200, gin.H{"view": "task-create"})
		})
		pages.GET("/tasks/:id/edit", func(c *gin.Context) {
			c.JSON(200, gin.H{"view": "task-edit"})
		})
		pages.GET(constants.LoginPath, func(c *gin.Context) {
			c.JSON(200, gin.H{"view": "login", "error": c.Query("error")})
		})
		pages.GET(constants.OAuthCallbackPath, func(c *gin.Context) {
			c.JSON(200, gin.H{"view": "auth-callback"})
		})
	}

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/github", authHandler.SignInWithGitHub)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(client.Auth), authHandler.GetCurrentUser)
		}

		// Workspace routes (protected)
		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth(client.Auth))
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)
			workspaces.POST("/join", workspaceHandler.JoinWorkspace)
			workspaces.GET("/:id", middleware.RequireWorkspaceAccess(client.Workspaces), workspaceHandler.GetWorkspace)
			workspaces.POST("/:id/invite", middleware.RequireWorkspaceAccess(client.Workspaces), middleware.RequireWorkspaceManager(), workspaceHandler.InviteMember)
			workspaces.DELETE("/:id/members/:user_id", middleware.RequireWorkspaceAccess(client.Workspaces), middleware.RequireWorkspaceManager(), workspaceHandler.RemoveMember)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(client.Auth))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), taskHandler.DeleteTask)

			// Comment routes nested under a task
			tasks.GET("/:id/comments", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.ListComments)
			tasks.POST("/:id/comments", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.CreateComment)
			tasks.PATCH("/:id/comments/:comment_id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.UpdateComment)
			tasks.DELETE("/:id/comments/:comment_id", middleware.RequireTaskAccess(client.Tasks, client.Workspaces), commentHandler.DeleteComment)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
