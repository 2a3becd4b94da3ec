package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/constants"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

// RequireWorkspaceAccess checks that the user is a member of the workspace
// named by the :id parameter and stores workspace and membership in context.
func RequireWorkspaceAccess(workspaces remote.WorkspaceRemote) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("id")

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		workspace, err := workspaces.FindByID(workspaceID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
			c.Abort()
			return
		}

		member, err := workspaces.FindMember(workspaceID, userID)
		if err != nil {
			// 404 instead of 403 to avoid leaking workspace existence
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, *workspace)
		c.Set(constants.ContextKeyMember, *member)
		c.Next()
	}
}

// RequireWorkspaceManager checks that the membership stored by
// RequireWorkspaceAccess carries a role allowed to manage members.
func RequireWorkspaceManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberValue, exists := c.Get(constants.ContextKeyMember)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Workspace access required"})
			c.Abort()
			return
		}

		member, ok := memberValue.(models.WorkspaceMember)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid workspace member data"})
			c.Abort()
			return
		}

		if !member.Role.CanManageMembers() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only workspace owners and admins can perform this action"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspace retrieves the workspace stored by RequireWorkspaceAccess.
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return models.Workspace{}, false
	}
	workspace, ok := value.(models.Workspace)
	return workspace, ok
}

// GetMember retrieves the membership stored by RequireWorkspaceAccess.
func GetMember(c *gin.Context) (models.WorkspaceMember, bool) {
	value, exists := c.Get(constants.ContextKeyMember)
	if !exists {
		return models.WorkspaceMember{}, false
	}
	member, ok := value.(models.WorkspaceMember)
	return member, ok
}
