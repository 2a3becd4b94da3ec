package store

import (
	"errors"

	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

// FetchWorkspaces replaces the cached workspace list. Failures are recorded
// but not returned, mirroring FetchTasks.
func (s *TaskStore) FetchWorkspaces() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	workspaces, _, err := s.client.Workspaces.ListForUser(s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = "Failed to fetch workspaces: " + err.Error()
		s.workspaces = nil
		return
	}
	s.lastErr = ""
	s.workspaces = workspaces
}

// CreateWorkspace stores a workspace owned by the current user, prepends the
// stored row and selects it as the active workspace.
func (s *TaskStore) CreateWorkspace(name, description string) (*models.Workspace, error) {
	if s.userID == "" {
		s.recordErr("Failed to create workspace", ErrNotAuthenticated)
		return nil, ErrNotAuthenticated
	}

	workspace := &models.Workspace{
		Name:        name,
		Description: description,
		OwnerID:     s.userID,
	}
	stored, err := s.client.Workspaces.Insert(workspace)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to create workspace: " + err.Error()
		return nil, err
	}
	s.lastErr = ""
	s.workspaces = append([]models.Workspace{*stored}, s.workspaces...)
	s.activeWorkspace = stored
	return stored, nil
}

// InviteToWorkspace adds the profile registered under email as a member with
// the given role.
func (s *TaskStore) InviteToWorkspace(workspaceID, email string, role models.WorkspaceRole) (*models.WorkspaceMember, error) {
	profile, err := s.client.Profiles.FindByEmail(email)
	if err != nil {
		s.recordErr("Failed to invite member", err)
		return nil, err
	}

	member, err := s.client.Workspaces.AddMember(&models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      profile.ID,
		Role:        role,
	})
	if err != nil {
		s.recordErr("Failed to invite member", err)
		return nil, err
	}

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	return member, nil
}

// JoinWorkspace adds the current user to the workspace behind an invite code.
func (s *TaskStore) JoinWorkspace(code string) (*models.Workspace, error) {
	if s.userID == "" {
		s.recordErr("Failed to join workspace", ErrNotAuthenticated)
		return nil, ErrNotAuthenticated
	}

	workspace, err := s.client.Workspaces.FindByInviteCode(code)
	if err != nil {
		s.recordErr("Failed to join workspace", err)
		return nil, err
	}

	_, err = s.client.Workspaces.AddMember(&models.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      s.userID,
		Role:        models.RoleMember,
	})
	if err != nil && !errors.Is(err, remote.ErrAlreadyMember) {
		s.recordErr("Failed to join workspace", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	s.workspaces = append([]models.Workspace{*workspace}, s.workspaces...)
	return workspace, nil
}

func (s *TaskStore) recordErr(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = prefix + ": " + err.Error()
}
