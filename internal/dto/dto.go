package dto

import (
	"time"

	"github.com/tasklight/tasklight/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceWithRoleDTO represents a workspace with the user's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.WorkspaceRole `json:"role"`
}

// MemberDTO represents a member in a workspace
type MemberDTO struct {
	User      UserDTO              `json:"user"`
	Role      models.WorkspaceRole `json:"role"`
	CreatedAt time.Time            `json:"created_at"`
}

// WorkspaceDetailDTO represents detailed workspace information
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []MemberDTO          `json:"members"`
	YourRole models.WorkspaceRole `json:"your_role"`
}

// ToUserDTO converts a Profile to UserDTO
func ToUserDTO(profile models.Profile) UserDTO {
	return UserDTO{
		ID:        profile.ID,
		Email:     profile.Email,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
	}
}

// ToWorkspaceDTO converts a Workspace to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace, includeInviteCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		OwnerID:     workspace.OwnerID,
		CreatedAt:   workspace.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToMemberDTO converts a membership row to MemberDTO
func ToMemberDTO(member models.WorkspaceMember) MemberDTO {
	return MemberDTO{
		User:      ToUserDTO(member.User),
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
}

// ToWorkspaceDetailDTO converts a workspace with members to a detailed DTO.
// The invite code is included only for roles that may manage members.
func ToWorkspaceDetailDTO(workspace models.Workspace, members []models.WorkspaceMember, yourRole models.WorkspaceRole) WorkspaceDetailDTO {
	memberDTOs := make([]MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMemberDTO(member)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(workspace, yourRole.CanManageMembers()),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}
