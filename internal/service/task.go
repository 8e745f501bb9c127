package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidDueDate = errors.New("due_date must be a YYYY-MM-DD date")
)

const dateLayout = "2006-01-02"

// defaultCategories are always present in the category listing.
var defaultCategories = []string{"General", "Work", "Personal", "Health", "Learning", "Shopping"}

// categoryColors maps known category names to display colors. Categories
// outside this map fall back to the General gray.
var categoryColors = map[string]string{
	"General":  "#6B7280",
	"Work":     "#DC2626",
	"Personal": "#059669",
	"Health":   "#7C3AED",
	"Learning": "#EA580C",
	"Shopping": "#0891B2",
}

const fallbackCategoryColor = "#6B7280"

// TaskStore is the persistence surface the task service depends on.
type TaskStore interface {
	Insert(ctx context.Context, task *model.Task) error
	GetByOwner(ctx context.Context, userID, taskID string) (*model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter, sort model.TaskSort) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, taskID string) error
	DistinctCategories(ctx context.Context, userID string) ([]string, error)
}

// TaskService handles task business logic: creation defaults, partial
// updates, listing, response normalization and aggregate statistics.
type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// Create stores a new task owned by userID. Missing priority and category
// take their defaults.
func (s *TaskService) Create(ctx context.Context, userID string, req model.CreateTaskRequest) (model.TaskResponse, error) {
	now := s.now().UTC()

	task := model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.PriorityMedium,
		Category:    model.DefaultCategory,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Priority != "" {
		task.Priority = model.Priority(req.Priority)
	}
	if req.Category != "" {
		task.Category = req.Category
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return model.TaskResponse{}, err
		}
		task.DueDate = due
	}

	if err := s.tasks.Insert(ctx, &task); err != nil {
		return model.TaskResponse{}, err
	}

	return normalizeTask(task, today(now)), nil
}

// Get retrieves one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (model.TaskResponse, error) {
	task, err := s.tasks.GetByOwner(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	return normalizeTask(*task, today(s.now())), nil
}

// List retrieves the owner's tasks matching the query.
func (s *TaskService) List(ctx context.Context, userID string, q model.ListTasksQuery) ([]model.TaskResponse, error) {
	filter := model.TaskFilter{
		Completed: q.Completed,
		Category:  q.Category,
		Priority:  q.Priority,
		Search:    q.Search,
	}
	order := model.TaskSort{
		Field:      q.SortBy,
		Descending: q.SortOrder == "desc",
	}

	tasks, err := s.tasks.List(ctx, userID, filter, order)
	if err != nil {
		return nil, err
	}

	day := today(s.now())
	responses := make([]model.TaskResponse, len(tasks))
	for i, t := range tasks {
		responses[i] = normalizeTask(t, day)
	}

	return responses, nil
}

// Update applies a partial update to one of the owner's tasks. Only
// supplied fields change, and updated_at advances only when at least one
// field was supplied.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	task, err := s.tasks.GetByOwner(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	if req.Empty() {
		return normalizeTask(*task, today(s.now())), nil
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return model.TaskResponse{}, err
		}
		task.DueDate = due
	}
	if req.Priority != nil {
		task.Priority = model.Priority(*req.Priority)
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	task.UpdatedAt = s.now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}

	// Re-read so a concurrent delete surfaces as not found rather than a
	// silent no-op.
	task, err = s.tasks.GetByOwner(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	return normalizeTask(*task, today(s.now())), nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	err := s.tasks.Delete(ctx, userID, taskID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// Stats aggregates the owner's tasks into counts and a per-category
// breakdown with display colors.
func (s *TaskService) Stats(ctx context.Context, userID string) (model.TaskStats, error) {
	tasks, err := s.tasks.List(ctx, userID, model.TaskFilter{}, model.TaskSort{Field: "created_at", Descending: true})
	if err != nil {
		return model.TaskStats{}, err
	}

	day := today(s.now())
	stats := model.TaskStats{
		Total:      len(tasks),
		Categories: []model.CategoryStat{},
	}

	counts := make(map[string]int)
	var order []string

	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
		if t.Priority == model.PriorityHigh {
			stats.HighPriority++
		}
		if isOverdue(t, day) {
			stats.Overdue++
		}

		name := t.Category
		if name == "" {
			name = model.DefaultCategory
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	stats.Pending = stats.Total - stats.Completed

	for _, name := range order {
		color, ok := categoryColors[name]
		if !ok {
			color = fallbackCategoryColor
		}
		stats.Categories = append(stats.Categories, model.CategoryStat{
			Name:  name,
			Count: counts[name],
			Color: color,
		})
	}

	return stats, nil
}

// Categories returns the categories in use by the owner merged with the
// default set, deduplicated and sorted ascending.
func (s *TaskService) Categories(ctx context.Context, userID string) ([]string, error) {
	used, err := s.tasks.DistinctCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(used)+len(defaultCategories))
	merged := make([]string, 0, len(used)+len(defaultCategories))
	for _, c := range used {
		if c != "" && !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	for _, c := range defaultCategories {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}

	sort.Strings(merged)
	return merged, nil
}

// normalizeTask prepares a stored task for transport: legacy rows get
// their defaults backfilled, the overdue flag is computed against day, and
// the due date is rendered in calendar-date form. Pure given (task, day)
// and idempotent.
func normalizeTask(t model.Task, day time.Time) model.TaskResponse {
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Category == "" {
		t.Category = model.DefaultCategory
	}

	resp := model.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Category:    t.Category,
		Completed:   t.Completed,
		IsOverdue:   isOverdue(t, day),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}

	return resp
}

// isOverdue reports whether the task's due date has passed and the task is
// not completed. day is the current UTC calendar date.
func isOverdue(t model.Task, day time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(day)
}

// today truncates an instant to its UTC calendar date.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDueDate parses a YYYY-MM-DD string into a date-only instant.
func parseDueDate(value string) (*time.Time, error) {
	due, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	return &due, nil
}
