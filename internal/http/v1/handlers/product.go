package handlers

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/domain"
	"atelier/internal/domain/product"
	"atelier/internal/domain/stockledger"
	"atelier/internal/http/v1/dto"
	"atelier/internal/storage/postgres"
)

// ProductHandler provides product endpoints: CRUD with table parts, line
// mutations, pricing reports and stock operations.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
	ledger  *stockledger.Service
	stocks  *postgres.StockRepo
	audit   *postgres.AuditService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(
	base *BaseHandler,
	service *product.Service,
	ledger *stockledger.Service,
	stocks *postgres.StockRepo,
	audit *postgres.AuditService,
) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
		ledger:      ledger,
		stocks:      stocks,
		audit:       audit,
	}
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
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

// Get handles GET /products/:id. The response includes both table parts.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetWithLines(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionCreate)
	h.Created(c, p)
}

// Update handles PUT /products/:id. Lines are loaded first so the full
// update keeps them intact.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetWithLines(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := req.Apply(existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionUpdate)
	h.OK(c, p)
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.service.Delete(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	_ = h.audit.LogChange(c.Request.Context(), "product", productID,
		postgres.AuditActionDelete, map[string]any{"outcome": outcome})

	h.OK(c, dto.DeleteResponse{Outcome: outcome})
}

// AddMaterialLine handles POST /products/:id/material-lines.
func (h *ProductHandler) AddMaterialLine(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddMaterialLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	materialID, err := dto.ParseID("materialId", req.MaterialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.AddMaterialLine(c.Request.Context(), productID, materialID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionUpdate)
	h.OK(c, p)
}

// RemoveMaterialLine handles DELETE /products/:id/material-lines/:lineId.
func (h *ProductHandler) RemoveMaterialLine(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseIDParam(c, "lineId")
	if !ok {
		return
	}

	p, err := h.service.RemoveMaterialLine(c.Request.Context(), productID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionUpdate)
	h.OK(c, p)
}

// AddProcedureLine handles POST /products/:id/procedure-lines.
func (h *ProductHandler) AddProcedureLine(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddProcedureLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	procedureID, err := dto.ParseID("procedureId", req.ProcedureID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.AddProcedureLine(c.Request.Context(), productID, procedureID, req.Cost)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionUpdate)
	h.OK(c, p)
}

// RemoveProcedureLine handles DELETE /products/:id/procedure-lines/:lineId.
func (h *ProductHandler) RemoveProcedureLine(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseIDParam(c, "lineId")
	if !ok {
		return
	}

	p, err := h.service.RemoveProcedureLine(c.Request.Context(), productID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionUpdate)
	h.OK(c, p)
}

// RecalculateAll handles POST /products/recalculate.
func (h *ProductHandler) RecalculateAll(c *gin.Context) {
	summary, err := h.service.RecalculateAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// MispricingReport handles GET /products/reports/mispricing.
func (h *ProductHandler) MispricingReport(c *gin.Context) {
	var query dto.MispricingQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.MispricingReport(c.Request.Context(), query.Threshold)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// StockAlerts handles GET /products/reports/stock-alerts.
func (h *ProductHandler) StockAlerts(c *gin.Context) {
	alerts, err := h.service.StockAlerts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, alerts)
}

// UpdateStock handles POST /products/:id/stock.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.StockUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		h.Error(c, err)
		return
	}

	adjustment, err := h.ledger.ApplyManualUpdate(c.Request.Context(), h.Actor(c), productID, update)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, adjustment)
}

// StockMovements handles GET /products/:id/stock-movements.
func (h *ProductHandler) StockMovements(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	movements, err := h.stocks.ListMovements(c.Request.Context(), p.Code, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, movements)
}

// logAudit records a product change with its current cost-relevant fields.
func (h *ProductHandler) logAudit(c *gin.Context, p *product.Product, action postgres.AuditAction) {
	_ = h.audit.LogChange(c.Request.Context(), "product", p.ID, action, map[string]any{
		"code":               p.Code,
		"suggestedRetail":    p.SuggestedRetailSellingPrice,
		"suggestedWholesale": p.SuggestedWholesaleSellingPrice,
		"finalRetail":        p.FinalSellingPriceRetail,
		"finalWholesale":     p.FinalSellingPriceWholesale,
	})
}
