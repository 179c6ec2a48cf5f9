package migration

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vibita-lite/internal/database"
)

func TestMigratorUpDown(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m, err := NewForDB(db, "sqlite", zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, m.Up(ctx))
	// second run has nothing to apply
	require.NoError(t, m.Up(ctx))

	_, err = db.ExecContext(ctx, `INSERT INTO order_states (shop, order_id) VALUES ('a.myshopify.com', '1')`)
	require.NoError(t, err)

	var processed bool
	require.NoError(t, db.QueryRowContext(ctx, `SELECT is_processed FROM order_states WHERE order_id = '1'`).Scan(&processed))
	require.False(t, processed)

	_, err = db.ExecContext(ctx, `INSERT INTO order_states (shop, order_id) VALUES ('a.myshopify.com', '1')`)
	require.Error(t, err, "primary key (shop, order_id) must reject duplicates")

	require.NoError(t, m.Down(ctx, 0, true))
	_, err = db.ExecContext(ctx, `SELECT 1 FROM order_states`)
	require.Error(t, err)
}

func TestGooseDialect(t *testing.T) {
	for driver, want := range map[string]string{"pg": "postgres", "mysql": "mysql", "sqlite": "sqlite3"} {
		got, err := gooseDialect(driver)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := gooseDialect("oracle")
	require.Error(t, err)
}

func TestNewRequiresSQLStorage(t *testing.T) {
	_, err := New(&database.Connections{Driver: "postgres"}, zaptest.NewLogger(t))
	require.ErrorIs(t, err, database.ErrDisabled)
}
