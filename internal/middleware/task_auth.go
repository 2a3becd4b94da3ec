package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

// RequireTaskAccess checks that the user may act on the task named by the
// :id parameter: membership in the task's workspace, or ownership for an
// unassigned task. The loaded task is stored in context.
func RequireTaskAccess(tasks remote.TaskRemote, workspaces remote.WorkspaceRemote) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		task, err := tasks.FindByID(taskID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			c.Abort()
			return
		}

		if task.WorkspaceID == nil {
			if task.UserID != userID {
				// 404 instead of 403 to avoid leaking task existence
				c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
				c.Abort()
				return
			}
		} else {
			if _, err := workspaces.FindMember(*task.WorkspaceID, userID); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
				c.Abort()
				return
			}
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTaskAccess.
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
