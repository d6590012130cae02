package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"atelier/internal/core/entity"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/lifecycle"
	"atelier/internal/http/v1/dto"
)

// ReferenceService is the service surface the generic handler drives.
// Every catalog service satisfies it through its embedded base service.
type ReferenceService[T entity.Validatable] interface {
	Create(ctx context.Context, item T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, entityID id.ID) (lifecycle.Outcome, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// ReferenceHandler provides generic CRUD endpoints for catalog entities.
// Mappers translate request DTOs into domain entities; responses are the
// entities themselves, serialized via their JSON tags.
type ReferenceHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service ReferenceService[T]

	mapCreate func(req CreateDTO) (T, error)
	mapUpdate func(req UpdateDTO, existing T) (T, error)
}

// ReferenceHandlerConfig configures the reference handler.
type ReferenceHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service   ReferenceService[T]
	MapCreate func(req CreateDTO) (T, error)
	MapUpdate func(req UpdateDTO, existing T) (T, error)
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg ReferenceHandlerConfig[T, CreateDTO, UpdateDTO],
) *ReferenceHandler[T, CreateDTO, UpdateDTO] {
	return &ReferenceHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler: base,
		service:     cfg.Service,
		mapCreate:   cfg.MapCreate,
		mapUpdate:   cfg.MapUpdate,
	}
}

// List handles GET /{entity}.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeInactive = c.Query("includeInactive") == "true"

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

// Get handles GET /{entity}/:id.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Create handles POST /{entity}.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.mapCreate(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item)
}

// Update handles PUT /{entity}/:id.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	item, err := h.mapUpdate(req, existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Delete handles DELETE /{entity}/:id. The response reports whether the
// lifecycle soft-deleted or hard-deleted the record.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.service.Delete(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.DeleteResponse{Outcome: outcome})
}

// RegisterRoutes mounts the five CRUD routes on a group.
func (h *ReferenceHandler[T, CreateDTO, UpdateDTO]) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
