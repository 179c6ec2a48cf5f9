package dto

import "time"

// MoneyResponse is a display-only amount.
type MoneyResponse struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// EnrichedOrderResponse is one row of the orders table.
type EnrichedOrderResponse struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	CreatedAt         time.Time      `json:"createdAt"`
	Email             string         `json:"email,omitempty"`
	FulfillmentStatus string         `json:"fulfillmentStatus"`
	Total             *MoneyResponse `json:"total,omitempty"`
	IsProcessed       bool           `json:"isProcessed"`
}

// OrderListResponse is the orders table payload. Diagnostic carries a
// plain-language message when the listing is degraded.
type OrderListResponse struct {
	Orders     []EnrichedOrderResponse `json:"orders"`
	Diagnostic string                  `json:"diagnostic,omitempty"`
}

// ToggleResponse reports the flag after a toggle.
type ToggleResponse struct {
	OrderID     string `json:"orderId"`
	IsProcessed bool   `json:"isProcessed"`
}
