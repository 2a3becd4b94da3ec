package models

type SortField string

const (
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "createdAt"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilters is transient view state, never persisted. Zero values mean
// "match everything" for the corresponding predicate.
type TaskFilters struct {
	Search   string        `json:"search"`
	Tags     []string      `json:"tags"`
	Status   *TaskStatus   `json:"status,omitempty"`
	Priority *TaskPriority `json:"priority,omitempty"`
}

// SortConfig is transient view state for list ordering.
type SortConfig struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders by creation time, newest first.
func DefaultSort() SortConfig {
	return SortConfig{Field: SortByCreatedAt, Order: SortDesc}
}
