package dto

import "atelier/internal/domain/catalogs/customer"

// CreateCustomerRequest for POST /customers.
type CreateCustomerRequest struct {
	Code  string  `json:"code" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	TIN   *string `json:"tin"`
}

// ToEntity maps the request to a new Customer.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.Email = r.Email
	c.Phone = r.Phone
	c.TIN = r.TIN
	return c
}

// UpdateCustomerRequest for PUT /customers/:id.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	TIN     *string `json:"tin"`
	Version int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Customer.
func (r UpdateCustomerRequest) Apply(c *customer.Customer) *customer.Customer {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.TIN != nil {
		c.TIN = r.TIN
	}
	c.Version = r.Version
	return c
}
