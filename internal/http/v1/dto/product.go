package dto

import (
	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/product"
)

// ProductLineRequest is one table-part line on create/update.
type ProductLineRequest struct {
	MaterialID  *string          `json:"materialId"`
	ProcedureID *string          `json:"procedureId"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Cost        *decimal.Decimal `json:"cost"`
}

// CreateProductRequest for POST /products.
type CreateProductRequest struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	CategoryID    *string `json:"categoryId"`
	MinutesToMake *int    `json:"minutesToMake"`
	Stock         *int    `json:"stock"`
	LowStockAlert int     `json:"lowStockAlert"`

	FinalSellingPriceRetail    decimal.Decimal `json:"finalSellingPriceRetail"`
	FinalSellingPriceWholesale decimal.Decimal `json:"finalSellingPriceWholesale"`

	MaterialLines  []ProductLineRequest `json:"materialLines"`
	ProcedureLines []ProductLineRequest `json:"procedureLines"`
}

// ToEntity maps the request to a new Product.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	p := product.NewProduct(r.Code, r.Name)
	p.MinutesToMake = r.MinutesToMake
	p.Stock = r.Stock
	p.LowStockAlert = r.LowStockAlert
	p.FinalSellingPriceRetail = r.FinalSellingPriceRetail
	p.FinalSellingPriceWholesale = r.FinalSellingPriceWholesale

	if r.CategoryID != nil {
		categoryID, err := ParseID("categoryId", *r.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &categoryID
	}

	materials, procedures, err := mapProductLines(r.MaterialLines, r.ProcedureLines)
	if err != nil {
		return nil, err
	}
	p.MaterialLines = materials
	p.ProcedureLines = procedures

	return p, nil
}

// UpdateProductRequest for PUT /products/:id. Line mutations go through the
// dedicated line endpoints; a full update may still rewrite both parts.
type UpdateProductRequest struct {
	Name          *string `json:"name"`
	CategoryID    *string `json:"categoryId"`
	MinutesToMake *int    `json:"minutesToMake"`
	LowStockAlert *int    `json:"lowStockAlert"`

	FinalSellingPriceRetail    *decimal.Decimal `json:"finalSellingPriceRetail"`
	FinalSellingPriceWholesale *decimal.Decimal `json:"finalSellingPriceWholesale"`

	Version int `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Product.
func (r UpdateProductRequest) Apply(p *product.Product) (*product.Product, error) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.CategoryID != nil {
		categoryID, err := ParseID("categoryId", *r.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &categoryID
	}
	if r.MinutesToMake != nil {
		p.MinutesToMake = r.MinutesToMake
	}
	if r.LowStockAlert != nil {
		p.LowStockAlert = *r.LowStockAlert
	}
	if r.FinalSellingPriceRetail != nil {
		p.FinalSellingPriceRetail = *r.FinalSellingPriceRetail
	}
	if r.FinalSellingPriceWholesale != nil {
		p.FinalSellingPriceWholesale = *r.FinalSellingPriceWholesale
	}
	p.Version = r.Version
	return p, nil
}

// AddMaterialLineRequest for POST /products/:id/material-lines.
type AddMaterialLineRequest struct {
	MaterialID string          `json:"materialId" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
}

// AddProcedureLineRequest for POST /products/:id/procedure-lines.
type AddProcedureLineRequest struct {
	ProcedureID string          `json:"procedureId" binding:"required"`
	Cost        decimal.Decimal `json:"cost" binding:"required"`
}

// MispricingQuery for GET /products/reports/mispricing.
type MispricingQuery struct {
	Threshold decimal.Decimal `form:"threshold"`
}

func mapProductLines(materialReqs, procedureReqs []ProductLineRequest) ([]product.MaterialLine, []product.ProcedureLine, error) {
	var materials []product.MaterialLine
	for _, req := range materialReqs {
		if req.MaterialID == nil || req.Quantity == nil {
			return nil, nil, apperror.NewValidation("material line requires materialId and quantity")
		}
		materialID, err := ParseID("materialId", *req.MaterialID)
		if err != nil {
			return nil, nil, err
		}
		materials = append(materials, product.MaterialLine{
			LineID:     id.New(),
			MaterialID: materialID,
			Quantity:   *req.Quantity,
		})
	}

	var procedures []product.ProcedureLine
	for _, req := range procedureReqs {
		if req.ProcedureID == nil || req.Cost == nil {
			return nil, nil, apperror.NewValidation("procedure line requires procedureId and cost")
		}
		procedureID, err := ParseID("procedureId", *req.ProcedureID)
		if err != nil {
			return nil, nil, err
		}
		procedures = append(procedures, product.ProcedureLine{
			LineID:      id.New(),
			ProcedureID: procedureID,
			Cost:        *req.Cost,
		})
	}

	return materials, procedures, nil
}
