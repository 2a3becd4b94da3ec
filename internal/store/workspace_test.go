package store

import (
	"github.com/stretchr/testify/assert"
	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

func (suite *TaskStoreTestSuite) TestCreateWorkspaceBecomesActive() {
	workspace, err := suite.store.CreateWorkspace("Second Workspace", "for testing")
	suite.Require().NoError(err)

	assert.NotEmpty(suite.T(), workspace.ID)
	assert.NotEmpty(suite.T(), workspace.InviteCode)
	assert.Equal(suite.T(), suite.user.ID, workspace.OwnerID)
	assert.Equal(suite.T(), workspace.ID, suite.store.ActiveWorkspace().ID)

	// The creator holds the owner membership.
	member, err := suite.client.Workspaces.FindMember(workspace.ID, suite.user.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleOwner, member.Role)
}

func (suite *TaskStoreTestSuite) TestFetchWorkspacesReplacesList() {
	suite.store.FetchWorkspaces()

	assert.Empty(suite.T(), suite.store.LastError())
	workspaces := suite.store.Workspaces()
	suite.Require().Len(workspaces, 1)
	assert.Equal(suite.T(), suite.workspace.ID, workspaces[0].ID)
}

func (suite *TaskStoreTestSuite) TestInviteToWorkspace() {
	invitee := models.Profile{Email: "invitee@example.com"}
	suite.Require().NoError(suite.db.Create(&invitee).Error)

	member, err := suite.store.InviteToWorkspace(suite.workspace.ID, "invitee@example.com", models.RoleViewer)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), invitee.ID, member.UserID)
	assert.Equal(suite.T(), models.RoleViewer, member.Role)
}

func (suite *TaskStoreTestSuite) TestInviteUnknownEmailReRaises() {
	_, err := suite.store.InviteToWorkspace(suite.workspace.ID, "nobody@example.com", models.RoleMember)

	assert.ErrorIs(suite.T(), err, remote.ErrProfileNotFound)
	assert.NotEmpty(suite.T(), suite.store.LastError())
}

func (suite *TaskStoreTestSuite) TestJoinWorkspaceByInviteCode() {
	joiner := models.Profile{Email: "joiner@example.com"}
	suite.Require().NoError(suite.db.Create(&joiner).Error)

	joinerStore := NewTaskStore(joiner.ID, suite.client)
	workspace, err := joinerStore.JoinWorkspace(suite.workspace.InviteCode)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), suite.workspace.ID, workspace.ID)

	member, err := suite.client.Workspaces.FindMember(workspace.ID, joiner.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RoleMember, member.Role)
}

func (suite *TaskStoreTestSuite) TestCommentLifecycle() {
	task := suite.addTask("Commented", "Body", models.TaskPriorityLow)

	comment, err := suite.store.AddComment(task.ID, "first!")
	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), comment.ID)
	assert.Equal(suite.T(), suite.user.ID, comment.UserID)

	updated, err := suite.store.UpdateComment(comment.ID, "edited")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "edited", updated.Content)

	suite.store.FetchComments(task.ID)
	comments := suite.store.Comments()
	suite.Require().Len(comments, 1)
	assert.Equal(suite.T(), "edited", comments[0].Content)
	// Author display info rides along.
	assert.Equal(suite.T(), suite.user.Email, comments[0].Author.Email)

	suite.store.DeleteComment(comment.ID)
	assert.Empty(suite.T(), suite.store.LastError())
	assert.Empty(suite.T(), suite.store.Comments())
}
