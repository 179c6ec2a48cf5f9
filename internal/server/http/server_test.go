package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vibita-lite/internal/config"
	"github.com/Additional-Code/vibita-lite/internal/observability"
)

func newTestEcho(t *testing.T) *echo.Echo {
	var cfg config.Config
	cfg.State.Driver = "sql"
	return NewEcho(cfg, &observability.Manager{}, zaptest.NewLogger(t))
}

func TestHealth(t *testing.T) {
	e := newTestEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","stateDriver":"sql"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestErrorHandler(t *testing.T) {
	e := newTestEcho(t)
	e.GET("/boom", func(c echo.Context) error { return errors.New("db exploded") })
	e.GET("/panic", func(c echo.Context) error { panic("unexpected") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"kind":"internal"`)
	require.NotContains(t, rec.Body.String(), "db exploded")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
