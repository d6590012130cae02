package dto

import (
	"github.com/shopspring/decimal"

	"atelier/internal/domain/catalogs/material"
)

// CreateMaterialRequest for POST /materials.
type CreateMaterialRequest struct {
	Code            string           `json:"code" binding:"required"`
	Name            string           `json:"name" binding:"required"`
	Unit            string           `json:"unit" binding:"required"`
	CurrentUnitCost *decimal.Decimal `json:"currentUnitCost"`
	SupplierID      *string          `json:"supplierId"`
}

// ToEntity maps the request to a new Material.
func (r CreateMaterialRequest) ToEntity() (*material.Material, error) {
	m := material.NewMaterial(r.Code, r.Name, r.Unit)
	if r.CurrentUnitCost != nil {
		m.CurrentUnitCost = decimal.NullDecimal{Decimal: *r.CurrentUnitCost, Valid: true}
	}
	if r.SupplierID != nil {
		supplierID, err := ParseID("supplierId", *r.SupplierID)
		if err != nil {
			return nil, err
		}
		m.SupplierID = &supplierID
	}
	return m, nil
}

// UpdateMaterialRequest for PUT /materials/:id.
type UpdateMaterialRequest struct {
	Name       *string `json:"name"`
	Unit       *string `json:"unit"`
	SupplierID *string `json:"supplierId"`
	Version    int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Material.
func (r UpdateMaterialRequest) Apply(m *material.Material) (*material.Material, error) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Unit != nil {
		m.Unit = *r.Unit
	}
	if r.SupplierID != nil {
		supplierID, err := ParseID("supplierId", *r.SupplierID)
		if err != nil {
			return nil, err
		}
		m.SupplierID = &supplierID
	}
	m.Version = r.Version
	return m, nil
}
