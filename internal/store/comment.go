package store

import (
	"github.com/tasklight/tasklight/internal/models"
)

// FetchComments replaces the cached comment list with the task's comments,
// oldest first. Failures are recorded but not returned.
func (s *TaskStore) FetchComments(taskID string) {
	comments, err := s.client.Comments.ListForTask(taskID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to fetch comments: " + err.Error()
		s.comments = nil
		return
	}
	s.lastErr = ""
	s.comments = comments
}

// AddComment stores a comment by the current user and appends the stored row.
func (s *TaskStore) AddComment(taskID, content string) (*models.Comment, error) {
	if s.userID == "" {
		s.recordErr("Failed to add comment", ErrNotAuthenticated)
		return nil, ErrNotAuthenticated
	}

	stored, err := s.client.Comments.Insert(&models.Comment{
		TaskID:  taskID,
		UserID:  s.userID,
		Content: content,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to add comment: " + err.Error()
		return nil, err
	}
	s.lastErr = ""
	s.comments = append(s.comments, *stored)
	return stored, nil
}

// UpdateComment replaces a comment's content and the local entry.
func (s *TaskStore) UpdateComment(id, content string) (*models.Comment, error) {
	stored, err := s.client.Comments.Update(id, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to update comment: " + err.Error()
		return nil, err
	}
	s.lastErr = ""
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments[i] = *stored
			break
		}
	}
	return stored, nil
}

// DeleteComment removes a comment. Failures are recorded but not returned.
func (s *TaskStore) DeleteComment(id string) {
	err := s.client.Comments.Delete(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to delete comment: " + err.Error()
		return
	}
	s.lastErr = ""
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			break
		}
	}
}
