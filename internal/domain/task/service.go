package task

import (
	"context"
	"fmt"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/internal/domain"
	"atelier/pkg/logger"
)

// Repository defines the interface for Task persistence.
// Tasks reference nothing that counts as a dependent; delete is hard.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, taskID id.ID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, taskID id.ID) error
	List(ctx context.Context, filter Filter) (domain.ListResult[*Task], error)
}

// Service provides business logic for tasks.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new task service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create creates a new task.
func (s *Service) Create(ctx context.Context, t *Task) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a task.
func (s *Service) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("task", taskID.String())
		}
		return nil, err
	}
	return t, nil
}

// Update persists task field changes. Status is changed via Transition only.
func (s *Service) Update(ctx context.Context, t *Task) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
}

// Transition moves a task to the next status.
func (s *Service) Transition(ctx context.Context, taskID id.ID, next Status) (*Task, error) {
	var t *Task
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := t.Transition(next); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "task transitioned", "taskId", taskID, "status", next)
	return t, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, taskID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetByID(ctx, taskID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, taskID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// List retrieves tasks matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Task], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
