package domain

import (
	"context"
	"fmt"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/internal/domain/lifecycle"
	"atelier/pkg/logger"
)

// ReferenceService provides business logic for reference catalog entities.
// Entity-specific services embed it and register hooks for uniqueness checks
// and cascading behavior.
type ReferenceService[T entity.Validatable] struct {
	repo      ReferenceRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// ReferenceServiceConfig configures the reference service.
type ReferenceServiceConfig[T entity.Validatable] struct {
	Repo       ReferenceRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewReferenceService creates a new reference service.
func NewReferenceService[T entity.Validatable](cfg ReferenceServiceConfig[T]) *ReferenceService[T] {
	return &ReferenceService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *ReferenceService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *ReferenceService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	// If entity already returns structured AppError, keep it.
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *ReferenceService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but ensure not-found is mapped to the correct entity name.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create creates a new reference entity.
func (s *ReferenceService[T]) Create(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, item); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, item); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, item); err != nil {
		// Entity is already created; surface the hook failure in logs only.
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// GetByID retrieves entity by ID.
func (s *ReferenceService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	item, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return item, s.normalizeGetErr(err, entityID.String())
	}
	return item, nil
}

// GetByCode retrieves entity by code.
func (s *ReferenceService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	item, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return item, s.normalizeGetErr(err, code)
	}
	return item, nil
}

// Update updates an existing entity.
func (s *ReferenceService[T]) Update(ctx context.Context, item T) error {
	if err := item.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, item); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, item); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, item); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// Delete applies the lifecycle policy: soft delete when dependents exist,
// hard delete otherwise. Runs in a single transaction.
func (s *ReferenceService[T]) Delete(ctx context.Context, entityID id.ID) (lifecycle.Outcome, error) {
	item, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return "", s.normalizeGetErr(err, entityID.String())
	}

	if err := s.hooks.Run(ctx, BeforeDelete, item); err != nil {
		return "", err
	}

	var outcome lifecycle.Outcome
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		outcome, err = lifecycle.Delete(ctx, s.repo, entityID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "reference deleted",
		"entity", s.entityName,
		"id", entityID,
		"outcome", outcome,
	)

	return outcome, nil
}

// List retrieves entities with filtering.
func (s *ReferenceService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *ReferenceService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
