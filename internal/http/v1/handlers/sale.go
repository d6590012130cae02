package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/domain/sale"
	"atelier/internal/http/v1/dto"
	"atelier/internal/storage/postgres"
)

// SaleHandler provides sale document endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
	audit   *postgres.AuditService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service, audit *postgres.AuditService) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, audit: audit}
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	var query dto.SaleListQuery
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

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetWithLines(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// Record handles POST /sales. Pricing, stock decrement and persistence run
// in one transaction.
func (h *SaleHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saleReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	s, err := h.service.Record(c.Request.Context(), h.Actor(c), saleReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "sale", s.ID, postgres.AuditActionCreate, map[string]any{
		"date":            s.Date,
		"finalTotalPrice": s.FinalTotalPrice,
		"lines":           len(s.Lines),
	})

	h.Created(c, s)
}

// Update handles PUT /sales/:id. The old stock effect is reversed and the
// document is re-recorded from the new request.
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saleReq, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	s, err := h.service.Update(c.Request.Context(), h.Actor(c), saleID, saleReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "sale", s.ID, postgres.AuditActionUpdate, map[string]any{
		"date":            s.Date,
		"finalTotalPrice": s.FinalTotalPrice,
		"lines":           len(s.Lines),
	})

	h.OK(c, s)
}

// Delete handles DELETE /sales/:id. Sold quantities return to stock.
func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.Actor(c), saleID); err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "sale", saleID, postgres.AuditActionDelete, nil)

	h.OK(c, dto.SuccessResponse{Success: true})
}
