package repository

import (
	"context"
	"database/sql"

	"github.com/taskflow/taskflow-go/internal/model"
)

// StatusRepository handles legacy status-check persistence.
type StatusRepository struct {
	db *sql.DB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// Insert stores a status check.
func (r *StatusRepository) Insert(ctx context.Context, check *model.StatusCheck) error {
	query := `INSERT INTO status_checks (id, client_name, checked_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, check.ID, check.ClientName, check.Timestamp)
	return err
}

// List retrieves recorded status checks, newest first.
func (r *StatusRepository) List(ctx context.Context) ([]model.StatusCheck, error) {
	query := `SELECT id, client_name, checked_at FROM status_checks ORDER BY checked_at DESC LIMIT 1000`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []model.StatusCheck
	for rows.Next() {
		var c model.StatusCheck
		if err := rows.Scan(&c.ID, &c.ClientName, &c.Timestamp); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}

	return checks, rows.Err()
}
