// Package task provides the workshop to-do list: small work items with a
// strict status lifecycle.
package task

import (
	"context"
	"time"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the lifecycle: pending may start or cancel,
// in-progress may finish or cancel, done and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusDone || next == StatusCancelled
	case StatusDone, StatusCancelled:
		return false
	}
	return false
}

// Task is a work item, optionally tied to a product.
type Task struct {
	entity.BaseEntity

	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description,omitempty"`
	Status      Status `db:"status" json:"status"`

	ProductID  *id.ID     `db:"product_id" json:"productId,omitempty"`
	AssignedTo *id.ID     `db:"assigned_to" json:"assignedTo,omitempty"`
	DueAt      *time.Time `db:"due_at" json:"dueAt,omitempty"`

	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// NewTask creates a new pending Task.
func NewTask(title string) *Task {
	return &Task{
		BaseEntity: entity.NewBaseEntity(),
		Title:      title,
		Status:     StatusPending,
	}
}

// Validate implements entity.Validatable.
func (t *Task) Validate(ctx context.Context) error {
	if t.Title == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}
	if !t.Status.Valid() {
		return apperror.NewValidation("unknown task status").
			WithDetail("field", "status").
			WithDetail("value", string(t.Status))
	}
	return nil
}

// Transition moves the task to the next status, stamping completion time
// when it finishes.
func (t *Task) Transition(next Status) error {
	if !next.Valid() {
		return apperror.NewValidation("unknown task status").
			WithDetail("value", string(next))
	}
	if !t.Status.CanTransitionTo(next) {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"invalid task status transition",
		).WithDetail("from", string(t.Status)).WithDetail("to", string(next))
	}

	t.Status = next
	if next == StatusDone {
		now := time.Now().UTC()
		t.CompletedAt = &now
	}
	t.Touch()

	return nil
}

// Filter narrows task listings.
type Filter struct {
	Status     Status
	AssignedTo *id.ID
	ProductID  *id.ID

	Limit  int
	Offset int
}
