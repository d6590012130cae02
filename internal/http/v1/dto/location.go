package dto

import "atelier/internal/domain/catalogs/location"

// CreateLocationRequest for POST /locations.
type CreateLocationRequest struct {
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// ToEntity maps the request to a new Location.
func (r CreateLocationRequest) ToEntity() *location.Location {
	l := location.NewLocation(r.Code, r.Name)
	l.Address = r.Address
	return l
}

// UpdateLocationRequest for PUT /locations/:id.
type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Version int     `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing Location.
func (r UpdateLocationRequest) Apply(l *location.Location) *location.Location {
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Address != nil {
		l.Address = r.Address
	}
	l.Version = r.Version
	return l
}
