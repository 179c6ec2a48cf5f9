package entity

import "time"

// FulfillmentStatus mirrors the Admin API displayFulfillmentStatus vocabulary.
// Values outside the known set are kept verbatim.
type FulfillmentStatus string

const (
	FulfillmentFulfilled          FulfillmentStatus = "FULFILLED"
	FulfillmentUnfulfilled        FulfillmentStatus = "UNFULFILLED"
	FulfillmentPartiallyFulfilled FulfillmentStatus = "PARTIALLY_FULFILLED"
	FulfillmentInProgress         FulfillmentStatus = "IN_PROGRESS"
	FulfillmentOnHold             FulfillmentStatus = "ON_HOLD"
	FulfillmentOpen               FulfillmentStatus = "OPEN"
	FulfillmentPendingFulfillment FulfillmentStatus = "PENDING_FULFILLMENT"
	FulfillmentScheduled          FulfillmentStatus = "SCHEDULED"
	FulfillmentRestocked          FulfillmentStatus = "RESTOCKED"
	FulfillmentRequestDeclined    FulfillmentStatus = "REQUEST_DECLINED"
)

// Known reports whether s belongs to the documented vocabulary.
func (s FulfillmentStatus) Known() bool {
	switch s {
	case FulfillmentFulfilled, FulfillmentUnfulfilled, FulfillmentPartiallyFulfilled,
		FulfillmentInProgress, FulfillmentOnHold, FulfillmentOpen,
		FulfillmentPendingFulfillment, FulfillmentScheduled, FulfillmentRestocked,
		FulfillmentRequestDeclined:
		return true
	}
	return false
}

// Money is a decimal amount kept as the upstream string plus its currency.
// It is displayed, never aggregated.
type Money struct {
	Amount       string
	CurrencyCode string
}

// Order is a read-only snapshot of a remote order. It is fetched fresh on
// every request and never persisted locally.
type Order struct {
	ID                string
	Name              string
	CreatedAt         time.Time
	Email             string
	FulfillmentStatus FulfillmentStatus
	// Total is nil when the upstream omitted the price set.
	Total *Money
}

// EnrichedOrder is an Order left-joined with its local processing state.
type EnrichedOrder struct {
	Order
	State ProcessedState
}

// IsProcessed collapses the state; absent state means not processed.
func (o EnrichedOrder) IsProcessed() bool {
	return o.State.Resolve()
}
