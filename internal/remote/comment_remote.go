package remote

import (
	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormCommentRemote is a GORM implementation of CommentRemote.
type GormCommentRemote struct {
	db *gorm.DB
}

func NewCommentRemote(db *gorm.DB) CommentRemote {
	return &GormCommentRemote{db: db}
}

// ListForTask returns a task's comments oldest first, with author profiles.
func (r *GormCommentRemote) ListForTask(taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRemote) Insert(comment *models.Comment) (*models.Comment, error) {
	if err := r.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return r.FindByID(comment.ID)
}

func (r *GormCommentRemote) Update(id string, content string) (*models.Comment, error) {
	result := r.db.Model(&models.Comment{}).Where("id = ?", id).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(id)
}

func (r *GormCommentRemote) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Comment{}).Error
}

func (r *GormCommentRemote) FindByID(id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}
