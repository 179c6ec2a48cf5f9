package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderState is the locally owned processing flag for one order of one shop.
// At most one row exists per (shop, order_id).
type OrderState struct {
	bun.BaseModel `bun:"table:order_states"`

	Shop        string    `bun:"shop,pk"`
	OrderID     string    `bun:"order_id,pk"`
	IsProcessed bool      `bun:"is_processed,notnull"`
	Version     int64     `bun:"version,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// ProcessedState distinguishes a stored flag from a missing one.
// The zero value is Unknown.
type ProcessedState struct {
	known bool
	value bool
}

// Known wraps a flag read from the state store.
func Known(processed bool) ProcessedState {
	return ProcessedState{known: true, value: processed}
}

// Unknown is the state of an order with no stored row, or whose row could not be read.
func Unknown() ProcessedState {
	return ProcessedState{}
}

// IsKnown reports whether the flag came from the store.
func (s ProcessedState) IsKnown() bool { return s.known }

// Resolve returns the flag, treating Unknown as false.
func (s ProcessedState) Resolve() bool {
	return s.known && s.value
}

func (s ProcessedState) String() string {
	switch {
	case !s.known:
		return "unknown"
	case s.value:
		return "processed"
	default:
		return "unprocessed"
	}
}
