package dto

import "atelier/internal/domain/catalogs/procedure"

// CreateProcedureRequest for POST /procedures.
type CreateProcedureRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity maps the request to a new Procedure.
func (r CreateProcedureRequest) ToEntity() *procedure.Procedure {
	p := procedure.NewProcedure(r.Code, r.Name)
	p.Description = r.Description
	return p
}

// UpdateProcedureRequest for PUT /procedures/:id.
type UpdateProcedureRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Procedure.
func (r UpdateProcedureRequest) Apply(p *procedure.Procedure) *procedure.Procedure {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	p.Version = r.Version
	return p
}
