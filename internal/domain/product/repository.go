package product

import (
	"context"

	"github.com/shopspring/decimal"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Repository defines the interface for Product persistence.
// Dependents counted by the lifecycle policy are sale line items.
type Repository interface {
	domain.ReferenceRepository[*Product]

	// GetLines loads the table parts for a product.
	GetLines(ctx context.Context, productID id.ID) ([]MaterialLine, []ProcedureLine, error)

	// ReplaceLines rewrites both table parts atomically.
	ReplaceLines(ctx context.Context, productID id.ID, materials []MaterialLine, procedures []ProcedureLine) error

	// UpdateSuggestedPrices stores freshly computed suggested prices.
	UpdateSuggestedPrices(ctx context.Context, productID id.ID, retail, wholesale decimal.Decimal) error

	// GetMany resolves a batch of products by ID, keyed by ID.
	// Missing IDs are simply absent from the map.
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	// ListActive returns all active products without table parts.
	ListActive(ctx context.Context) ([]*Product, error)
}
