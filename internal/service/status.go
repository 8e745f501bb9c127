package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/model"
)

// StatusStore is the persistence surface the status service depends on.
type StatusStore interface {
	Insert(ctx context.Context, check *model.StatusCheck) error
	List(ctx context.Context) ([]model.StatusCheck, error)
}

// StatusService records and lists legacy status checks.
type StatusService struct {
	checks StatusStore
	now    func() time.Time
}

// NewStatusService creates a new StatusService.
func NewStatusService(checks StatusStore) *StatusService {
	return &StatusService{checks: checks, now: time.Now}
}

// Record stores a status check for the given client.
func (s *StatusService) Record(ctx context.Context, clientName string) (model.StatusCheck, error) {
	check := model.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.now().UTC(),
	}
	if err := s.checks.Insert(ctx, &check); err != nil {
		return model.StatusCheck{}, err
	}
	return check, nil
}

// Recent lists recorded status checks.
func (s *StatusService) Recent(ctx context.Context) ([]model.StatusCheck, error) {
	return s.checks.List(ctx)
}
