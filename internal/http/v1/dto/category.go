package dto

import "atelier/internal/domain/catalogs/category"

// CreateCategoryRequest for POST /categories.
type CreateCategoryRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity maps the request to a new Category.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Code, r.Name)
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest for PUT /categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Category.
func (r UpdateCategoryRequest) Apply(c *category.Category) *category.Category {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	c.Version = r.Version
	return c
}
