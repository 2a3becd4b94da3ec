package remote

import (
	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormTaskRemote is a GORM implementation of TaskRemote.
type GormTaskRemote struct {
	db *gorm.DB
}

func NewTaskRemote(db *gorm.DB) TaskRemote {
	return &GormTaskRemote{db: db}
}

// List returns the tasks in scope ordered by creation time descending.
func (r *GormTaskRemote) List(scope TaskListScope) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	if scope.WorkspaceID != nil {
		query = query.Where("workspace_id = ?", *scope.WorkspaceID)
	} else {
		var workspaceIDs []string
		if err := r.db.Model(&models.WorkspaceMember{}).
			Where("user_id = ?", scope.UserID).
			Pluck("workspace_id", &workspaceIDs).Error; err != nil {
			return nil, err
		}

		if len(workspaceIDs) > 0 {
			query = query.Where(
				"(workspace_id IS NULL AND user_id = ?) OR workspace_id IN ?",
				scope.UserID, workspaceIDs,
			)
		} else {
			query = query.Where("workspace_id IS NULL AND user_id = ?", scope.UserID)
		}
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRemote) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Insert stores the task and returns it as stored, with backend-assigned
// id and timestamps.
func (r *GormTaskRemote) Insert(task *models.Task) (*models.Task, error) {
	if err := r.db.Create(task).Error; err != nil {
		return nil, err
	}

	var stored models.Task
	if err := r.db.First(&stored, "id = ?", task.ID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Update applies a partial update and returns the stored row.
func (r *GormTaskRemote) Update(id string, fields map[string]any) (*models.Task, error) {
	result := r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var stored models.Task
	if err := r.db.First(&stored, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stored, nil
}

// Delete removes a task. Deleting an id that does not exist is a no-op.
func (r *GormTaskRemote) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Task{}).Error
}
