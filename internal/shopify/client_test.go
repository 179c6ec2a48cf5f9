package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/entity"
)

const testShop = "demo.myshopify.com"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.Shopify = config.Shopify{
		APIVersion:   "2024-10",
		BaseURL:      srv.URL,
		AccessTokens: map[string]string{testShop: "shpat_test"},
		Timeout:      time.Second,
	}
	return New(cfg, zaptest.NewLogger(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func TestRecentOrders(t *testing.T) {
	var gotFirst float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/api/2024-10/graphql.json", r.URL.Path)
		require.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Query, "sortKey: CREATED_AT, reverse: true")
		gotFirst = req.Variables["first"].(float64)

		writeJSON(t, w, http.StatusOK, `{"data":{"orders":{"edges":[
			{"node":{"id":"gid://shopify/Order/2","name":"#1002","createdAt":"2024-01-16T09:00:00Z","email":null,
				"displayFulfillmentStatus":"UNFULFILLED","totalPriceSet":{"shopMoney":{"amount":"5.00","currencyCode":"EUR"}}}},
			{"node":{"id":"gid://shopify/Order/1","name":"#1001","createdAt":"2024-01-15T10:00:00Z","email":"a@b.com",
				"displayFulfillmentStatus":"FULFILLED","totalPriceSet":null}}
		]}}}`)
	})

	orders, err := client.RecentOrders(context.Background(), "Demo.myshopify.com", 10)
	require.NoError(t, err)
	require.Equal(t, float64(10), gotFirst)
	require.Len(t, orders, 2)

	require.Equal(t, "gid://shopify/Order/2", orders[0].ID)
	require.Equal(t, "#1002", orders[0].Name)
	require.Empty(t, orders[0].Email)
	require.Equal(t, &entity.Money{Amount: "5.00", CurrencyCode: "EUR"}, orders[0].Total)
	require.Equal(t, entity.FulfillmentUnfulfilled, orders[0].FulfillmentStatus)

	require.Equal(t, "a@b.com", orders[1].Email)
	require.Nil(t, orders[1].Total)
	require.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), orders[1].CreatedAt.UTC())
}

func TestRecentOrdersClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  float64
	}{
		{name: "zero", limit: 0, want: 1},
		{name: "above max", limit: 1000, want: MaxPageSize},
		{name: "in range", limit: 50, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req graphQLRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, tt.want, req.Variables["first"])
				writeJSON(t, w, http.StatusOK, `{"data":{"orders":{"edges":[]}}}`)
			})
			orders, err := client.RecentOrders(context.Background(), testShop, tt.limit)
			require.NoError(t, err)
			require.Empty(t, orders)
		})
	}
}

func TestRecentOrdersFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:   "graphql error payload",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"Throttled"}]}`,
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `upstream down`,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "missing orders",
			status:  http.StatusOK,
			body:    `{"data":{}}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "null data",
			status:  http.StatusOK,
			body:    `{"data":null}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "node without id",
			status:  http.StatusOK,
			body:    `{"data":{"orders":{"edges":[{"node":{"name":"#1","createdAt":"2024-01-15T10:00:00Z"}}]}}}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "bad timestamp",
			status:  http.StatusOK,
			body:    `{"data":{"orders":{"edges":[{"node":{"id":"1","name":"#1","createdAt":"yesterday"}}]}}}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "bad amount",
			status:  http.StatusOK,
			body:    `{"data":{"orders":{"edges":[{"node":{"id":"1","name":"#1","createdAt":"2024-01-15T10:00:00Z","totalPriceSet":{"shopMoney":{"amount":"ten","currencyCode":"USD"}}}}]}}}`,
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			orders, err := client.RecentOrders(context.Background(), testShop, 5)
			require.Error(t, err)
			require.Nil(t, orders)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			var respErr *ResponseError
			require.True(t, errors.As(err, &respErr))
			require.Equal(t, tt.status, respErr.Status)
		})
	}
}

func TestUnknownShopSkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.RecentOrders(context.Background(), "other.myshopify.com", 5)
	require.ErrorIs(t, err, ErrUnknownShop)
	require.Zero(t, calls.Load())
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	// registered after the server so it runs before srv.Close
	t.Cleanup(func() { close(release) })
	client.cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.RecentOrders(context.Background(), testShop, 5)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestOrderExists(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "found", body: `{"data":{"order":{"id":"gid://shopify/Order/1"}}}`, want: true},
		{name: "absent", body: `{"data":{"order":null}}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req graphQLRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, "gid://shopify/Order/1", req.Variables["id"])
				writeJSON(t, w, http.StatusOK, tt.body)
			})
			got, err := client.OrderExists(context.Background(), testShop, "gid://shopify/Order/1")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
