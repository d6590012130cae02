package entity

import (
	"context"
	"time"

	"atelier/internal/core/apperror"
)

// Document is the base type for business transactions with line items.
// Examples: Sale, Purchase.
//
// Documents are always hard-deleted: nothing references them, and their
// side effects (stock movements) are reversed explicitly before removal.
type Document struct {
	BaseEntity

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CreatedBy / UpdatedBy record the acting user (explicit, never ambient)
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string `db:"updated_by" json:"updatedBy,omitempty"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID and current date.
func NewDocument() Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
