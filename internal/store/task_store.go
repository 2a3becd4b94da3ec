// Package store holds the in-memory state containers that mirror remote
// records: the task/workspace container and the auth container. Containers
// cache the last successful fetch or mutation; there is no automatic refresh.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tasklight/tasklight/internal/models"
	"github.com/tasklight/tasklight/internal/remote"
)

var (
	ErrNoWorkspace      = errors.New("no workspace selected")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Tags        []string
}

// TaskPatch is a partial task update. Nil fields were not provided; non-nil
// empty strings are stripped before sending, so a patch cannot clear a field
// to the empty string.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	Tags        *[]string
}

// FilterPatch merges into the current filter configuration. Nil fields are
// left unchanged; the Clear flags reset the optional enum filters.
type FilterPatch struct {
	Search        *string
	Tags          *[]string
	Status        *models.TaskStatus
	ClearStatus   bool
	Priority      *models.TaskPriority
	ClearPriority bool
}

// TaskStore is the single in-memory source of truth for the current user's
// task list, workspace list and list view state.
type TaskStore struct {
	mu     sync.Mutex
	client *remote.Client
	userID string

	tasks           []models.Task
	workspaces      []models.Workspace
	activeWorkspace *models.Workspace
	comments        []models.Comment

	filters models.TaskFilters
	sorting models.SortConfig

	loading  bool
	lastErr  string
	deleting map[string]struct{}

	// Fetch responses apply in sequence order; a response older than the
	// last applied one is discarded.
	fetchSeq   uint64
	appliedSeq uint64
}

// NewTaskStore builds a container scoped to one authenticated user. An empty
// userID denotes an unauthenticated container; mutations will be refused.
func NewTaskStore(userID string, client *remote.Client) *TaskStore {
	return &TaskStore{
		client:   client,
		userID:   userID,
		sorting:  models.DefaultSort(),
		deleting: map[string]struct{}{},
	}
}

// Tasks returns a snapshot of the cached task list.
func (s *TaskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// Workspaces returns a snapshot of the cached workspace list.
func (s *TaskStore) Workspaces() []models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Workspace(nil), s.workspaces...)
}

// Comments returns a snapshot of the cached comment list.
func (s *TaskStore) Comments() []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Comment(nil), s.comments...)
}

func (s *TaskStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message recorded by the most recent failed action,
// or "" after a success.
func (s *TaskStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// IsDeleting reports whether a delete for the id is in flight, for per-row
// busy indicators.
func (s *TaskStore) IsDeleting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.deleting[id]
	return ok
}

// SetActiveWorkspace selects the workspace task fetches are scoped to.
// Passing nil selects the cross-workspace scope.
func (s *TaskStore) SetActiveWorkspace(workspace *models.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeWorkspace = workspace
}

func (s *TaskStore) ActiveWorkspace() *models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeWorkspace
}

// FetchTasks replaces the cached list with the remote result. On failure the
// list is cleared rather than left stale, and the error is recorded but not
// returned.
func (s *TaskStore) FetchTasks() {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	scope := remote.TaskListScope{UserID: s.userID}
	if s.activeWorkspace != nil {
		id := s.activeWorkspace.ID
		scope.WorkspaceID = &id
	}
	s.mu.Unlock()

	tasks, err := s.client.Tasks.List(scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if seq < s.appliedSeq {
		return
	}
	s.appliedSeq = seq

	if err != nil {
		s.lastErr = "Failed to fetch tasks: " + err.Error()
		s.tasks = nil
		return
	}
	s.lastErr = ""
	s.tasks = tasks
}

// AddTask inserts a task into the active workspace and prepends the stored
// row, so the list always reflects backend-assigned ids and timestamps.
// The error is recorded and also returned so the caller can react.
func (s *TaskStore) AddTask(input TaskInput) (*models.Task, error) {
	s.mu.Lock()
	if s.userID == "" {
		s.lastErr = "Failed to add task: " + ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if s.activeWorkspace == nil {
		s.lastErr = "Failed to add task: " + ErrNoWorkspace.Error()
		s.mu.Unlock()
		return nil, ErrNoWorkspace
	}
	workspaceID := s.activeWorkspace.ID
	s.mu.Unlock()

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Tags:        models.TagList(input.Tags),
		WorkspaceID: &workspaceID,
		UserID:      s.userID,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}

	stored, err := s.client.Tasks.Insert(task)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to add task: " + err.Error()
		return nil, err
	}
	s.lastErr = ""
	s.tasks = append([]models.Task{*stored}, s.tasks...)
	return stored, nil
}

// UpdateTask sends the non-empty fields of the patch and replaces the local
// entry with the stored row. A patch that strips down to nothing is a silent
// no-op and never reaches the remote service.
func (s *TaskStore) UpdateTask(id string, patch TaskPatch) (*models.Task, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return nil, nil
	}

	stored, err := s.client.Tasks.Update(id, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = "Failed to update task: " + err.Error()
		return nil, err
	}
	s.lastErr = ""
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = *stored
			break
		}
	}
	return stored, nil
}

func (p TaskPatch) fields() map[string]any {
	fields := map[string]any{}
	if p.Title != nil && *p.Title != "" {
		fields["title"] = *p.Title
	}
	if p.Description != nil && *p.Description != "" {
		fields["description"] = *p.Description
	}
	if p.Status != nil && *p.Status != "" {
		fields["status"] = *p.Status
	}
	if p.Priority != nil && *p.Priority != "" {
		fields["priority"] = *p.Priority
	}
	if p.Tags != nil {
		fields["tags"] = models.TagList(*p.Tags)
	}
	return fields
}

// DeleteTask removes a task. The id sits in the pending set for the duration
// of the call; failures are recorded but not returned.
func (s *TaskStore) DeleteTask(id string) {
	s.mu.Lock()
	s.deleting[id] = struct{}{}
	s.mu.Unlock()

	err := s.client.Tasks.Delete(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer delete(s.deleting, id)

	if err != nil {
		s.lastErr = "Failed to delete task: " + err.Error()
		return
	}
	s.lastErr = ""
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
}

// SetFilters merges the patch into the current filter configuration.
func (s *TaskStore) SetFilters(patch FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	if patch.Tags != nil {
		s.filters.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.ClearStatus {
		s.filters.Status = nil
	} else if patch.Status != nil {
		status := *patch.Status
		s.filters.Status = &status
	}
	if patch.ClearPriority {
		s.filters.Priority = nil
	} else if patch.Priority != nil {
		priority := *patch.Priority
		s.filters.Priority = &priority
	}
}

func (s *TaskStore) SetSorting(field models.SortField, order models.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sorting = models.SortConfig{Field: field, Order: order}
}

func (s *TaskStore) Filters() models.TaskFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *TaskStore) Sorting() models.SortConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorting
}

// FilteredTasks recomputes the derived view from the current snapshot:
// the AND of the search, tag, status and priority predicates, sorted by the
// configured field with task id as the tie-break.
func (s *TaskStore) FilteredTasks() []models.Task {
	s.mu.Lock()
	tasks := append([]models.Task(nil), s.tasks...)
	filters := s.filters
	sorting := s.sorting
	s.mu.Unlock()

	return FilterTasks(tasks, filters, sorting)
}

// FilterTasks is the pure derivation behind FilteredTasks.
func FilterTasks(tasks []models.Task, filters models.TaskFilters, sorting models.SortConfig) []models.Task {
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if matchesFilters(task, filters) {
			filtered = append(filtered, task)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		c := compareTasks(filtered[i], filtered[j], sorting.Field)
		if c == 0 {
			return filtered[i].ID < filtered[j].ID
		}
		if sorting.Order == models.SortDesc {
			return c > 0
		}
		return c < 0
	})

	return filtered
}

func matchesFilters(task models.Task, filters models.TaskFilters) bool {
	if search := strings.ToLower(strings.TrimSpace(filters.Search)); search != "" {
		title := strings.ToLower(task.Title)
		description := strings.ToLower(task.Description)
		if !strings.Contains(title, search) && !strings.Contains(description, search) {
			return false
		}
	}

	if len(filters.Tags) > 0 && !tagsIntersect(task.Tags, filters.Tags) {
		return false
	}

	if filters.Status != nil && task.Status != *filters.Status {
		return false
	}
	if filters.Priority != nil && task.Priority != *filters.Priority {
		return false
	}
	return true
}

func tagsIntersect(taskTags models.TagList, filterTags []string) bool {
	for _, want := range filterTags {
		for _, have := range taskTags {
			if have == want {
				return true
			}
		}
	}
	return false
}

var priorityRank = map[models.TaskPriority]int{
	models.TaskPriorityLow:    0,
	models.TaskPriorityMedium: 1,
	models.TaskPriorityHigh:   2,
}

func compareTasks(a, b models.Task, field models.SortField) int {
	switch field {
	case models.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case models.SortByPriority:
		return priorityRank[a.Priority] - priorityRank[b.Priority]
	case models.SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default: // createdAt
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		default:
			return 0
		}
	}
}

// AvailableTags returns every distinct tag across the loaded tasks,
// alphabetically ordered.
func (s *TaskStore) AvailableTags() []string {
	s.mu.Lock()
	tasks := append([]models.Task(nil), s.tasks...)
	s.mu.Unlock()

	seen := map[string]struct{}{}
	var tags []string
	for _, task := range tasks {
		for _, tag := range task.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
