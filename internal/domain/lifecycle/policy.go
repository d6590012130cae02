// Package lifecycle implements the soft-vs-hard delete rule shared by every
// reference-counted catalog: a record with dependents is deactivated and kept
// for history, a record nobody references is removed for good.
package lifecycle

import (
	"context"
	"fmt"

	"atelier/internal/core/id"
)

// Outcome reports which branch of the policy was taken.
type Outcome string

const (
	OutcomeSoftDeleted Outcome = "soft_deleted"
	OutcomeHardDeleted Outcome = "hard_deleted"
)

// Store is the minimal persistence surface the policy needs.
// Every reference repository implements it.
type Store interface {
	// CountDependents returns the number of records referencing the entity.
	CountDependents(ctx context.Context, id id.ID) (int64, error)

	// SoftDelete deactivates the entity and stamps deleted_at.
	SoftDelete(ctx context.Context, id id.ID) error

	// HardDelete removes the row, clearing owned join rows first.
	HardDelete(ctx context.Context, id id.ID) error
}

// Decide returns the outcome for a given dependent count.
func Decide(dependents int64) Outcome {
	if dependents > 0 {
		return OutcomeSoftDeleted
	}
	return OutcomeHardDeleted
}

// Delete applies the policy to one entity. The caller provides the
// transaction boundary; both branches are single statements plus the
// dependent count, so the whole decision stays consistent inside it.
func Delete(ctx context.Context, store Store, entityID id.ID) (Outcome, error) {
	dependents, err := store.CountDependents(ctx, entityID)
	if err != nil {
		return "", fmt.Errorf("count dependents: %w", err)
	}

	outcome := Decide(dependents)
	switch outcome {
	case OutcomeSoftDeleted:
		if err := store.SoftDelete(ctx, entityID); err != nil {
			return "", fmt.Errorf("soft delete: %w", err)
		}
	case OutcomeHardDeleted:
		if err := store.HardDelete(ctx, entityID); err != nil {
			return "", fmt.Errorf("hard delete: %w", err)
		}
	}

	return outcome, nil
}
