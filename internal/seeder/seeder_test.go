package seeder

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vibita-lite/internal/entity"
	"github.com/Additional-Code/vibita-lite/internal/repository/orderstate"
)

const shop = "demo.myshopify.com"

func newStore(t *testing.T) orderstate.Store {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return orderstate.NewRedisRepository(client, "test:")
}

func TestStates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	s := New(store, zaptest.NewLogger(t))

	n, err := s.States(ctx, shop, strings.NewReader("orderId,processed\ngid://shopify/Order/1,true\ngid://shopify/Order/2, false\n"))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	state, err := store.FindOne(ctx, shop, "gid://shopify/Order/1")
	require.NoError(t, err)
	require.Equal(t, entity.Known(true), state)

	state, err = store.FindOne(ctx, shop, "gid://shopify/Order/2")
	require.NoError(t, err)
	require.Equal(t, entity.Known(false), state)
}

func TestStatesRejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantWritten int
		wantErr     string
	}{
		{name: "bad flag", input: "1,true\n2,maybe\n", wantWritten: 1, wantErr: "line 2"},
		{name: "empty id", input: " ,true\n", wantWritten: 0, wantErr: "empty order id"},
		{name: "wrong arity", input: "1,true,extra\n", wantWritten: 0, wantErr: "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(newStore(t), zaptest.NewLogger(t))
			n, err := s.States(context.Background(), shop, strings.NewReader(tt.input))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.Equal(t, tt.wantWritten, n)
		})
	}
}
