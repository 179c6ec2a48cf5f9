package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/entity"
)

// MaxPageSize is the largest "first" argument the Admin API accepts.
const MaxPageSize = 250

const recentOrdersQuery = `query RecentOrders($first: Int!) {
  orders(first: $first, sortKey: CREATED_AT, reverse: true) {
    edges {
      node {
        id
        name
        createdAt
        email
        displayFulfillmentStatus
        totalPriceSet {
          shopMoney {
            amount
            currencyCode
          }
        }
      }
    }
  }
}`

const orderExistsQuery = `query OrderExists($id: ID!) {
  order(id: $id) {
    id
  }
}`

// Wire shapes. Every field is a pointer so absence can be told apart from
// the zero value.
type ordersData struct {
	Orders *struct {
		Edges []struct {
			Node *orderNode `json:"node"`
		} `json:"edges"`
	} `json:"orders"`
}

type orderNode struct {
	ID                       *string `json:"id"`
	Name                     *string `json:"name"`
	CreatedAt                *string `json:"createdAt"`
	Email                    *string `json:"email"`
	DisplayFulfillmentStatus *string `json:"displayFulfillmentStatus"`
	TotalPriceSet            *struct {
		ShopMoney *struct {
			Amount       *string `json:"amount"`
			CurrencyCode *string `json:"currencyCode"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
}

type orderData struct {
	Order *struct {
		ID string `json:"id"`
	} `json:"order"`
}

// RecentOrders returns up to limit orders of shop, newest first. The call
// either yields a fully validated list or fails; no partial list is returned.
func (c *Client) RecentOrders(ctx context.Context, shop string, limit int) ([]entity.Order, error) {
	limit = clampLimit(limit)
	data, err := c.do(ctx, "RecentOrders", shop, recentOrdersQuery, map[string]any{"first": limit})
	if err != nil {
		return nil, err
	}

	orders, err := decodeOrders(data)
	if err != nil {
		c.logger.Warn("shopify orders payload rejected", zap.String("shop", shop), zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// OrderExists reports whether orderID is visible to shop.
func (c *Client) OrderExists(ctx context.Context, shop, orderID string) (bool, error) {
	data, err := c.do(ctx, "OrderExists", shop, orderExistsQuery, map[string]any{"id": orderID})
	if err != nil {
		return false, err
	}

	var payload orderData
	if err := json.Unmarshal(data, &payload); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return payload.Order != nil && payload.Order.ID == orderID, nil
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

func decodeOrders(data json.RawMessage) ([]entity.Order, error) {
	var payload ordersData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Orders == nil {
		return nil, fmt.Errorf("%w: missing orders", ErrMalformedResponse)
	}

	orders := make([]entity.Order, 0, len(payload.Orders.Edges))
	for i, edge := range payload.Orders.Edges {
		order, err := toOrder(edge.Node)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", ErrMalformedResponse, i, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func toOrder(n *orderNode) (entity.Order, error) {
	if n == nil {
		return entity.Order{}, fmt.Errorf("null node")
	}
	if n.ID == nil || strings.TrimSpace(*n.ID) == "" {
		return entity.Order{}, fmt.Errorf("missing id")
	}
	if n.Name == nil {
		return entity.Order{}, fmt.Errorf("order %s: missing name", *n.ID)
	}
	if n.CreatedAt == nil {
		return entity.Order{}, fmt.Errorf("order %s: missing createdAt", *n.ID)
	}
	createdAt, err := time.Parse(time.RFC3339, *n.CreatedAt)
	if err != nil {
		return entity.Order{}, fmt.Errorf("order %s: createdAt: %v", *n.ID, err)
	}

	order := entity.Order{
		ID:        *n.ID,
		Name:      *n.Name,
		CreatedAt: createdAt,
	}
	if n.Email != nil {
		order.Email = *n.Email
	}
	if n.DisplayFulfillmentStatus != nil {
		order.FulfillmentStatus = entity.FulfillmentStatus(*n.DisplayFulfillmentStatus)
	}

	if n.TotalPriceSet != nil && n.TotalPriceSet.ShopMoney != nil {
		money := n.TotalPriceSet.ShopMoney
		total := &entity.Money{}
		if money.Amount != nil {
			if _, err := decimal.NewFromString(*money.Amount); err != nil {
				return entity.Order{}, fmt.Errorf("order %s: amount %q: %v", *n.ID, *money.Amount, err)
			}
			total.Amount = *money.Amount
		}
		if money.CurrencyCode != nil {
			total.CurrencyCode = *money.CurrencyCode
		}
		order.Total = total
	}
	return order, nil
}
