package remote

import (
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/utils"
	"gorm.io/gorm"
)

// GormWorkspaceRemote is a GORM implementation of WorkspaceRemote.
type GormWorkspaceRemote struct {
	db *gorm.DB
}

func NewWorkspaceRemote(db *gorm.DB) WorkspaceRemote {
	return &GormWorkspaceRemote{db: db}
}

// ListForUser returns the workspaces the user belongs to along with the
// matching membership rows.
func (r *GormWorkspaceRemote) ListForUser(userID string) ([]models.Workspace, []models.WorkspaceMember, error) {
	var memberships []models.WorkspaceMember
	if err := r.db.Preload("Workspace").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, nil, err
	}

	workspaces := make([]models.Workspace, len(memberships))
	for i, m := range memberships {
		workspaces[i] = m.Workspace
	}
	return workspaces, memberships, nil
}

// Insert stores the workspace and its owner membership in one transaction
// and returns the workspace as stored.
func (r *GormWorkspaceRemote) Insert(workspace *models.Workspace) (*models.Workspace, error) {
	if workspace.InviteCode == "" {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		workspace.InviteCode = code
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		member := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      workspace.OwnerID,
			Role:        models.RoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	var stored models.Workspace
	if err := r.db.First(&stored, "id = ?", workspace.ID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormWorkspaceRemote) FindByID(id string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.First(&workspace, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

func (r *GormWorkspaceRemote) FindByInviteCode(code string) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.Where("invite_code = ?", code).First(&workspace).Error; err != nil {
		if notFound(err) {
			return nil, ErrInvalidInvite
		}
		return nil, err
	}
	return &workspace, nil
}

// AddMember stores a membership row. Adding an existing member fails with
// ErrAlreadyMember.
func (r *GormWorkspaceRemote) AddMember(member *models.WorkspaceMember) (*models.WorkspaceMember, error) {
	var existing models.WorkspaceMember
	err := r.db.Where("workspace_id = ? AND user_id = ?", member.WorkspaceID, member.UserID).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !notFound(err) {
		return nil, err
	}

	if err := r.db.Create(member).Error; err != nil {
		return nil, err
	}

	var stored models.WorkspaceMember
	if err := r.db.Preload("User").
		Where("workspace_id = ? AND user_id = ?", member.WorkspaceID, member.UserID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormWorkspaceRemote) RemoveMember(workspaceID, userID string) error {
	return r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.WorkspaceMember{}).Error
}

func (r *GormWorkspaceRemote) FindMember(workspaceID, userID string) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	if err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *GormWorkspaceRemote) ListMembers(workspaceID string) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	if err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
