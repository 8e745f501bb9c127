package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// maxTaskResults caps every task listing. It is a safety bound, not a page
// size contract.
const maxTaskResults = 1000

const taskColumns = `id, user_id, title, description, due_date, priority, category, completed, created_at, updated_at`

// sortColumns maps the accepted sort_by values to their columns. Handlers
// validate sort_by before it reaches the repository; unknown values fall
// back to created_at here anyway.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"due_date":   "due_date",
	"priority":   "priority",
}

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert stores a new task.
func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description,
		dueDateArg(task.DueDate), string(task.Priority), task.Category,
		task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	return err
}

// GetByOwner retrieves a task by ID scoped to its owner. A task belonging
// to another user is indistinguishable from a missing one.
func (r *TaskRepository) GetByOwner(ctx context.Context, userID, taskID string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// List retrieves the owner's tasks matching filter in the requested order,
// capped at maxTaskResults.
func (r *TaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter, sort model.TaskSort) ([]model.Task, error) {
	where, args := buildTaskFilter(userID, filter)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT %d`,
		taskColumns, where, buildTaskOrder(sort), maxTaskResults)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Update persists every mutable field of the task, scoped to its owner.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks
		SET title = ?, description = ?, due_date = ?, priority = ?, category = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, dueDateArg(task.DueDate),
		string(task.Priority), task.Category, task.Completed, task.UpdatedAt,
		task.ID, task.UserID,
	)
	return err
}

// Delete removes a task scoped to its owner. Returns ErrTaskNotFound when
// no row was deleted.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DistinctCategories returns the category names in use by the owner.
func (r *TaskRepository) DistinctCategories(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT category FROM tasks
		WHERE user_id = ? AND category IS NOT NULL AND category <> ''
		ORDER BY category LIMIT 100`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// buildTaskFilter assembles the WHERE clause of a task listing. The owner
// predicate is always present; search matches title, description or
// category case-insensitively.
func buildTaskFilter(userID string, f model.TaskFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if f.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, *f.Completed)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.Search != "" {
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)")
		pattern := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	return strings.Join(clauses, " AND "), args
}

// buildTaskOrder assembles the ORDER BY clause. Priority sorts by its
// ordinal with a fixed created_at DESC tie-break; other fields sort
// directly in the requested direction.
func buildTaskOrder(s model.TaskSort) string {
	direction := "ASC"
	if s.Descending {
		direction = "DESC"
	}

	column, ok := sortColumns[s.Field]
	if !ok {
		column = "created_at"
	}

	if column == "priority" {
		var b strings.Builder
		b.WriteString("CASE priority")
		for _, p := range model.Priorities() {
			fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Ordinal())
		}
		b.WriteString(" ELSE 0 END ")
		b.WriteString(direction)
		b.WriteString(", created_at DESC")
		return b.String()
	}

	return column + " " + direction
}

// dueDateArg renders an optional due date as a DATE column value.
func dueDateArg(due *time.Time) any {
	if due == nil {
		return nil
	}
	return due.Format("2006-01-02")
}

// scanTask reads one task row. due_date, priority and category are
// nullable to support rows written before those columns existed; missing
// values surface as zero values and are backfilled by the service layer.
func scanTask(row interface{ Scan(dest ...any) error }) (*model.Task, error) {
	var (
		task     model.Task
		due      sql.NullTime
		priority sql.NullString
		category sql.NullString
	)

	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&due, &priority, &category, &task.Completed,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if due.Valid {
		d := due.Time
		task.DueDate = &d
	}
	task.Priority = model.Priority(priority.String)
	task.Category = category.String

	return &task, nil
}
