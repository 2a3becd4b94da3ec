package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
	"github.com/tasklight/tasklight/internal/services"
	"github.com/tasklight/tasklight/internal/store"
)

type TaskHandler struct {
	client         *remote.Client
	suggestService *services.SuggestService
}

func NewTaskHandler(client *remote.Client, suggestService *services.SuggestService) *TaskHandler {
	return &TaskHandler{
		client:         client,
		suggestService: suggestService,
	}
}

// taskStore builds the per-request state container for the current user.
func (h *TaskHandler) taskStore(c *gin.Context) (*store.TaskStore, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return store.NewTaskStore(userID, h.client), true
}

// ListTasks returns the filtered, sorted task view for the current user.
// Scope is the workspace named by ?workspace_id, or the cross-workspace
// scope when absent; search/tags/status/priority/sort_by/order query
// parameters shape the view.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskStore := store.NewTaskStore(userID, h.client)

	if workspaceID := c.Query("workspace_id"); workspaceID != "" {
		workspace, err := h.client.Workspaces.FindByID(workspaceID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
			return
		}
		if _, err := h.client.Workspaces.FindMember(workspaceID, userID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this workspace"})
			return
		}
		taskStore.SetActiveWorkspace(workspace)
	}

	taskStore.SetFilters(filterPatchFromQuery(c))
	taskStore.SetSorting(sortingFromQuery(c))

	taskStore.FetchTasks()
	if message := taskStore.LastError(); message != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":          taskStore.FilteredTasks(),
		"available_tags": taskStore.AvailableTags(),
		"filters":        taskStore.Filters(),
		"sorting":        taskStore.Sorting(),
	})
}

func filterPatchFromQuery(c *gin.Context) store.FilterPatch {
	var patch store.FilterPatch

	if search, ok := c.GetQuery("search"); ok {
		patch.Search = &search
	}
	if raw, ok := c.GetQuery("tags"); ok {
		tags := splitTags(raw)
		patch.Tags = &tags
	}
	if raw, ok := c.GetQuery("status"); ok && raw != "" {
		status := models.TaskStatus(raw)
		patch.Status = &status
	}
	if raw, ok := c.GetQuery("priority"); ok && raw != "" {
		priority := models.TaskPriority(raw)
		patch.Priority = &priority
	}
	return patch
}

func sortingFromQuery(c *gin.Context) (models.SortField, models.SortOrder) {
	sorting := models.DefaultSort()

	switch field := models.SortField(c.Query("sort_by")); field {
	case models.SortByTitle, models.SortByCreatedAt, models.SortByPriority, models.SortByStatus:
		sorting.Field = field
	}
	switch order := models.SortOrder(c.Query("order")); order {
	case models.SortAsc, models.SortDesc:
		sorting.Order = order
	}
	return sorting.Field, sorting.Order
}

// splitTags parses comma-delimited tag input into a set, dropping blanks.
func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// CreateTask creates a new task in a workspace the user belongs to.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	taskStore, ok := h.taskStore(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description" binding:"required"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		Tags        string              `json:"tags"`
		WorkspaceID string              `json:"workspace_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, _ := middleware.GetUserID(c)
	workspace, err := h.client.Workspaces.FindByID(req.WorkspaceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	if _, err := h.client.Workspaces.FindMember(req.WorkspaceID, userID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this workspace"})
		return
	}

	taskStore.SetActiveWorkspace(workspace)
	task, err := taskStore.AddTask(store.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        splitTags(req.Tags),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task not found in context"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update. Fields that are absent or empty are
// not sent; a request that strips down to nothing returns the task as is.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskStore, ok := h.taskStore(c)
	if !ok {
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task not found in context"})
		return
	}

	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *models.TaskStatus   `json:"status"`
		Priority    *models.TaskPriority `json:"priority"`
		Tags        *string              `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	patch := store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.Tags != nil {
		tags := splitTags(*req.Tags)
		patch.Tags = &tags
	}

	updated, err := taskStore.UpdateTask(task.ID, patch)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	if updated == nil {
		// Empty patch; nothing was sent to the backend.
		c.JSON(http.StatusOK, task)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskStore, ok := h.taskStore(c)
	if !ok {
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task not found in context"})
		return
	}

	userID, _ := middleware.GetUserID(c)
	if task.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can delete this task"})
		return
	}

	taskStore.DeleteTask(task.ID)
	if message := taskStore.LastError(); message != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SuggestTasks generates task suggestions from free text.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	type SuggestTasksRequest struct {
		Text        string `json:"text" binding:"required"`
		WorkspaceID string `json:"workspace_id" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.client.Workspaces.FindMember(req.WorkspaceID, userID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this workspace"})
		return
	}

	if h.suggestService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task suggestions are not configured. Please set OPENAI_API_KEY environment variable."})
		return
	}

	suggestions, err := h.suggestService.SuggestTasksFromText(context.Background(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to suggest tasks: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
	})
}
