package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	"atelier/internal/domain/task"
	"atelier/internal/http/v1/dto"
)

// TaskHandler provides task endpoints.
type TaskHandler struct {
	*BaseHandler
	service *task.Service
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(base *BaseHandler, service *task.Service) *TaskHandler {
	return &TaskHandler{BaseHandler: base, service: service}
}

// List handles GET /tasks.
func (h *TaskHandler) List(c *gin.Context) {
	var query dto.TaskListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, t)
}

// Update handles PUT /tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := req.Apply(existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Transition handles POST /tasks/:id/transition.
func (h *TaskHandler) Transition(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}

	next := task.Status(req.Status)
	if !next.Valid() {
		h.Error(c, apperror.NewValidation("unknown task status").WithDetail("status", req.Status))
		return
	}

	t, err := h.service.Transition(c.Request.Context(), taskID, next)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), taskID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true})
}
