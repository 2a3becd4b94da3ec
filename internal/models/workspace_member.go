package models

import "time"

type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleAdmin  WorkspaceRole = "admin"
	RoleMember WorkspaceRole = "member"
	RoleViewer WorkspaceRole = "viewer"
)

type WorkspaceMember struct {
	WorkspaceID string        `gorm:"type:varchar(36);primarykey" json:"workspace_id"`
	UserID      string        `gorm:"type:varchar(36);primarykey" json:"user_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time     `json:"created_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      Profile   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// CanManageMembers reports whether the role may invite or remove members.
func (r WorkspaceRole) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}
