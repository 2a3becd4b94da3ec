package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasklight/tasklight/internal/dto"
	"github.com/tasklight/tasklight/internal/middleware"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
	"github.com/tasklight/tasklight/internal/store"
)

type WorkspaceHandler struct {
	client *remote.Client
}

func NewWorkspaceHandler(client *remote.Client) *WorkspaceHandler {
	return &WorkspaceHandler{client: client}
}

// CreateWorkspace creates a new workspace owned by the current user.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	type CreateWorkspaceRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	taskStore := store.NewTaskStore(userID, h.client)
	workspace, err := taskStore.CreateWorkspace(req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace, true))
}

// ListWorkspaces returns all workspaces the user is a member of, with roles.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	workspaces, memberships, err := h.client.Workspaces.ListForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workspaces"})
		return
	}

	withRoles := make([]dto.WorkspaceWithRoleDTO, len(workspaces))
	for i, workspace := range workspaces {
		withRoles[i] = dto.WorkspaceWithRoleDTO{
			WorkspaceDTO: dto.ToWorkspaceDTO(workspace, memberships[i].Role.CanManageMembers()),
			Role:         memberships[i].Role,
		}
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": withRoles})
}

// GetWorkspace returns detailed workspace information with members.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Workspace not found in context"})
		return
	}
	member, ok := middleware.GetMember(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Membership not found in context"})
		return
	}

	members, err := h.client.Workspaces.ListMembers(workspace.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(workspace, members, member.Role))
}

// JoinWorkspace adds the current user to the workspace behind an invite code.
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	type JoinWorkspaceRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	taskStore := store.NewTaskStore(userID, h.client)
	workspace, err := taskStore.JoinWorkspace(req.InviteCode)
	if err != nil {
		if errors.Is(err, remote.ErrInvalidInvite) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invite code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join workspace"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace, false))
}

// InviteMember adds a registered profile to the workspace by email.
func (h *WorkspaceHandler) InviteMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Workspace not found in context"})
		return
	}

	type InviteMemberRequest struct {
		Email string               `json:"email" binding:"required,email"`
		Role  models.WorkspaceRole `json:"role"`
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	switch role {
	case models.RoleAdmin, models.RoleMember, models.RoleViewer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	taskStore := store.NewTaskStore(userID, h.client)
	member, err := taskStore.InviteToWorkspace(workspace.ID, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, remote.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No profile with that email"})
		case errors.Is(err, remote.ErrAlreadyMember):
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this workspace"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite member"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// RemoveMember removes a member from the workspace. The owner cannot be
// removed.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspace, ok := middleware.GetWorkspace(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Workspace not found in context"})
		return
	}

	targetID := c.Param("user_id")
	if targetID == workspace.OwnerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "The workspace owner cannot be removed"})
		return
	}

	if err := h.client.Workspaces.RemoveMember(workspace.ID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
