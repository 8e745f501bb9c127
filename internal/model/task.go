package model

import "time"

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Ordinal returns the sort weight of a priority: high above medium above
// low. Unrecognized values sort below everything.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Priorities lists the known priorities from highest to lowest ordinal.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// DefaultCategory is assigned to tasks stored without a category.
const DefaultCategory = "General"

// Task represents a task in the database. DueDate, Priority and Category
// may be unset on rows written before those columns existed.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time // calendar date, no time component
	Priority    Priority
	Category    string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string  `json:"category"`
	Completed   bool    `json:"completed"`
}

// UpdateTaskRequest carries a partial update: only non-nil fields change.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    *string `json:"category"`
	Completed   *bool   `json:"completed"`
}

// Empty reports whether the update supplies no fields at all.
func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.DueDate == nil &&
		r.Priority == nil && r.Category == nil && r.Completed == nil
}

// TaskFilter narrows a task listing. Zero values mean no constraint.
// The owner predicate is supplied separately and is always applied.
type TaskFilter struct {
	Completed *bool
	Category  string
	Priority  string
	Search    string
}

// TaskSort describes the requested listing order.
type TaskSort struct {
	Field      string
	Descending bool
}

// ListTasksQuery holds the query parameters of a task listing after
// boundary validation.
type ListTasksQuery struct {
	Completed *bool
	Search    string
	Category  string
	Priority  string
	SortBy    string `validate:"oneof=created_at title due_date priority"`
	SortOrder string `validate:"oneof=asc desc"`
}

// TaskResponse is a task prepared for transport: legacy fields backfilled,
// the overdue flag computed, and the due date in YYYY-MM-DD form.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Completed   bool      `json:"completed"`
	IsOverdue   bool      `json:"is_overdue"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryStat is one entry in the stats category breakdown.
type CategoryStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// TaskStats aggregates a user's tasks.
type TaskStats struct {
	Total        int            `json:"total"`
	Completed    int            `json:"completed"`
	Pending      int            `json:"pending"`
	Overdue      int            `json:"overdue"`
	HighPriority int            `json:"high_priority"`
	Categories   []CategoryStat `json:"categories"`
}
