// Package stockledger mutates product stock counters and records the
// movement audit stream. Overselling is allowed by design: a deduction may
// drive stock negative, which is logged, never rejected.
package stockledger

import (
	"time"

	"atelier/internal/core/id"
)

// Operation describes what happened to the counter in a movement record.
type Operation string

const (
	OpAdd    Operation = "ADD"
	OpRemove Operation = "REMOVE"
	OpSet    Operation = "SET"
)

// Reason records why the stock changed.
type Reason string

const (
	ReasonManual Reason = "MANUAL"
	ReasonSale   Reason = "SALE"
)

// Movement is the audit record of a single stock mutation. It is produced
// for every change of a tracked product; the core never reads it back,
// only the history endpoint does.
type Movement struct {
	ID            id.ID     `db:"id" json:"id"`
	ProductCode   string    `db:"product_code" json:"productCode"`
	Operation     Operation `db:"operation" json:"operation"`
	Reason        Reason    `db:"reason" json:"reason"`
	PreviousStock int       `db:"previous_stock" json:"previousStock"`
	NewStock      int       `db:"new_stock" json:"newStock"`
	Delta         int       `db:"delta" json:"delta"`
	CreatedBy     string    `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Direction selects the sale-side effect on stock.
type Direction string

const (
	// Deduct removes sold quantities from stock (sale recorded).
	Deduct Direction = "DEDUCT"

	// Restore adds quantities back (sale deleted). Restore is the exact
	// inverse of Deduct for the same quantity: stock returns to its
	// pre-sale value bit-for-bit.
	Restore Direction = "RESTORE"
)

// Update is the manual stock adjustment, one variant per update type.
type Update interface {
	isUpdate()
}

// Add increases stock by Quantity.
type Add struct{ Quantity int }

func (Add) isUpdate() {}

// Remove decreases stock by Quantity.
type Remove struct{ Quantity int }

func (Remove) isUpdate() {}

// Set assigns the counter directly.
type Set struct{ Quantity int }

func (Set) isUpdate() {}

// Adjustment reports a completed manual update.
type Adjustment struct {
	ProductID     id.ID  `json:"productId"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
	Delta         int    `json:"delta"`
	Status        Status `json:"status"`
}

// Status classifies stock health. Used for alerting only; no mutation is
// ever blocked by it.
type Status string

const (
	StatusNegative Status = "NEGATIVE"
	StatusLow      Status = "LOW"
	StatusNormal   Status = "NORMAL"
)

// Classify returns the stock health for a tracked counter value.
func Classify(stock, lowStockAlert int) Status {
	switch {
	case stock < 0:
		return StatusNegative
	case stock <= lowStockAlert:
		return StatusLow
	default:
		return StatusNormal
	}
}
