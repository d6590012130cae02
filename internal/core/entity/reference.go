package entity

import (
	"context"
	"time"

	"atelier/internal/core/apperror"
)

// Reference is the base type for reference data catalogs.
// Examples: Category, Customer, Location, Material, Procedure, Supplier.
//
// References are never removed while dependents point at them: deletion
// either deactivates the row (soft delete) or removes it for good when no
// dependent records exist.
type Reference struct {
	BaseEntity

	// Code is a human-readable identifier (unique per catalog)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active marks the record as usable for new documents
	Active bool `db:"active" json:"active"`

	// DeletedAt is set on soft delete, together with Active=false
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// NewReference creates a new active Reference with generated ID.
func NewReference(code, name string) Reference {
	return Reference{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
		Active:     true,
	}
}

// Ref returns the embedded Reference, letting generic code reach the base
// fields of any catalog entity.
func (r *Reference) Ref() *Reference {
	return r
}

// Validate implements Validatable interface.
func (r *Reference) Validate(ctx context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// SoftDelete deactivates the record and stamps the deletion time.
func (r *Reference) SoftDelete() {
	now := time.Now().UTC()
	r.Active = false
	r.DeletedAt = &now
	r.Touch()
}

// IsDeleted reports whether the record has been soft-deleted.
func (r *Reference) IsDeleted() bool {
	return r.DeletedAt != nil
}
