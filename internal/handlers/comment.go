package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/remote"
	"github.com/tasklight/tasklight/internal/store"
)

type CommentHandler struct {
	client *remote.Client
}

func NewCommentHandler(client *remote.Client) *CommentHandler {
	return &CommentHandler{client: client}
}

func (h *CommentHandler) store(c *gin.Context) (*store.TaskStore, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return store.NewTaskStore(userID, h.client), true
}

// ListComments returns a task's comments oldest first, with author info.
// Task access is checked by RequireTaskAccess.
func (h *CommentHandler) ListComments(c *gin.Context) {
	taskStore, ok := h.store(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task not found in context"})
		return
	}

	taskStore.FetchComments(task.ID)
	if message := taskStore.LastError(); message != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": taskStore.Comments()})
}

// CreateComment adds a comment by the current user.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	taskStore, ok := h.store(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task not found in context"})
		return
	}

	type CreateCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := taskStore.AddComment(task.ID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment's content. Only the author can edit.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	taskStore, ok := h.store(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	commentID := c.Param("comment_id")
	existing, err := h.client.Comments.FindByID(commentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit this comment"})
		return
	}

	type UpdateCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := taskStore.UpdateComment(commentID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. Only the author can delete.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	taskStore, ok := h.store(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	commentID := c.Param("comment_id")
	existing, err := h.client.Comments.FindByID(commentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this comment"})
		return
	}

	taskStore.DeleteComment(commentID)
	if message := taskStore.LastError(); message != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}
