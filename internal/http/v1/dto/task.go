package dto

import (
	"time"

	"atelier/internal/domain/task"
)

// CreateTaskRequest for POST /tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ProductID   *string    `json:"productId"`
	AssignedTo  *string    `json:"assignedTo"`
	DueAt       *time.Time `json:"dueAt"`
}

// ToEntity maps the request to a new Task.
func (r CreateTaskRequest) ToEntity() (*task.Task, error) {
	t := task.NewTask(r.Title)
	t.Description = r.Description
	t.DueAt = r.DueAt

	if r.ProductID != nil {
		productID, err := ParseID("productId", *r.ProductID)
		if err != nil {
			return nil, err
		}
		t.ProductID = &productID
	}
	if r.AssignedTo != nil {
		assignedTo, err := ParseID("assignedTo", *r.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = &assignedTo
	}

	return t, nil
}

// UpdateTaskRequest for PUT /tasks/:id. Status changes go through the
// transition endpoint.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assignedTo"`
	DueAt       *time.Time `json:"dueAt"`
	Version     int        `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Task.
func (r UpdateTaskRequest) Apply(t *task.Task) (*task.Task, error) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.AssignedTo != nil {
		assignedTo, err := ParseID("assignedTo", *r.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = &assignedTo
	}
	if r.DueAt != nil {
		t.DueAt = r.DueAt
	}
	t.Version = r.Version
	return t, nil
}

// TransitionTaskRequest for POST /tasks/:id/transition.
type TransitionTaskRequest struct {
	Status string `json:"status" binding:"required"`
}

// TaskListQuery for GET /tasks.
type TaskListQuery struct {
	Status     string  `form:"status"`
	AssignedTo *string `form:"assignedTo"`
	ProductID  *string `form:"productId"`
	Limit      int     `form:"limit"`
	Offset     int     `form:"offset"`
}

// ToFilter maps the query to a task filter.
func (q TaskListQuery) ToFilter() (task.Filter, error) {
	filter := task.Filter{
		Status: task.Status(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if q.AssignedTo != nil {
		assignedTo, err := ParseID("assignedTo", *q.AssignedTo)
		if err != nil {
			return task.Filter{}, err
		}
		filter.AssignedTo = &assignedTo
	}
	if q.ProductID != nil {
		productID, err := ParseID("productId", *q.ProductID)
		if err != nil {
			return task.Filter{}, err
		}
		filter.ProductID = &productID
	}

	return filter, nil
}
