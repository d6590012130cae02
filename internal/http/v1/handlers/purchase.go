package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/domain/purchase"
	"atelier/internal/http/v1/dto"
	"atelier/internal/storage/postgres"
)

// PurchaseHandler provides purchase document endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	audit   *postgres.AuditService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, audit *postgres.AuditService) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service, audit: audit}
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	var query dto.PurchaseListQuery
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

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetWithLines(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Record handles POST /purchases. Material unit costs update in the same
// transaction, which can shift suggested prices on dependent products.
func (h *PurchaseHandler) Record(c *gin.Context) {
	var req dto.RecordPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	purchaseReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Record(c.Request.Context(), h.Actor(c), purchaseReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "purchase", p.ID, postgres.AuditActionCreate, map[string]any{
		"date":      p.Date,
		"totalCost": p.TotalCost,
		"lines":     len(p.Lines),
	})

	h.Created(c, p)
}

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	purchaseReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), h.Actor(c), purchaseID, purchaseReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "purchase", p.ID, postgres.AuditActionUpdate, map[string]any{
		"date":      p.Date,
		"totalCost": p.TotalCost,
		"lines":     len(p.Lines),
	})

	h.OK(c, p)
}

// Delete handles DELETE /purchases/:id. Material costs are not rolled back.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.Actor(c), purchaseID); err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "purchase", purchaseID, postgres.AuditActionDelete, nil)

	h.OK(c, dto.SuccessResponse{Success: true})
}
