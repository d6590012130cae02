package sale

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Repository defines the interface for Sale persistence.
// Sales are documents: no soft delete, Delete removes the rows.
type Repository interface {
	// Create inserts the sale header.
	Create(ctx context.Context, s *Sale) error

	// GetByID retrieves the sale header without lines.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// Update modifies the header (with optimistic locking).
	Update(ctx context.Context, s *Sale) error

	// Delete removes the sale and its lines.
	Delete(ctx context.Context, saleID id.ID) error

	// GetLines loads the sale's line items.
	GetLines(ctx context.Context, saleID id.ID) ([]LineItem, error)

	// ReplaceLines rewrites the sale's line items atomically.
	ReplaceLines(ctx context.Context, saleID id.ID, lines []LineItem) error

	// List retrieves sales matching the filter, newest first.
	List(ctx context.Context, filter Filter) (domain.ListResult[*Sale], error)
}
