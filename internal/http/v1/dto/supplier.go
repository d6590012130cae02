package dto

import "atelier/internal/domain/catalogs/supplier"

// CreateSupplierRequest for POST /suppliers.
type CreateSupplierRequest struct {
	Code  string  `json:"code" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	TIN   *string `json:"tin"`
}

// ToEntity maps the request to a new Supplier.
func (r CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	s.Email = r.Email
	s.Phone = r.Phone
	s.TIN = r.TIN
	return s
}

// UpdateSupplierRequest for PUT /suppliers/:id.
type UpdateSupplierRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	TIN     *string `json:"tin"`
	Version int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Supplier.
func (r UpdateSupplierRequest) Apply(s *supplier.Supplier) *supplier.Supplier {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.TIN != nil {
		s.TIN = r.TIN
	}
	s.Version = r.Version
	return s
}
