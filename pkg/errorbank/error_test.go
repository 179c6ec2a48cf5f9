package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   codes.Code
	}{
		{name: "validation", err: Validation("order id is required"), status: http.StatusBadRequest, code: codes.InvalidArgument},
		{name: "unauthorized", err: Unauthorized("unknown shop"), status: http.StatusUnauthorized, code: codes.Unauthenticated},
		{name: "not found", err: NotFound("order not found"), status: http.StatusNotFound, code: codes.NotFound},
		{name: "remote source", err: RemoteSource("orders unavailable"), status: http.StatusBadGateway, code: codes.Unavailable},
		{name: "persistence", err: Persistence("state write failed"), status: http.StatusInternalServerError, code: codes.Internal},
		{name: "internal", err: Internal("boom"), status: http.StatusInternalServerError, code: codes.Internal},
		{name: "nil", err: nil, status: http.StatusInternalServerError, code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.status, tt.err.StatusCode())
			require.Equal(t, tt.code, tt.err.GRPCCode())
		})
	}
}

func TestFromKeepsKindThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := Persistence("failed to update order state", WithCause(cause), WithDetail("order_id", "gid://shopify/Order/1"))
	wrapped := fmt.Errorf("toggle: %w", appErr)

	got := From(wrapped)
	require.Same(t, appErr, got)
	require.Equal(t, KindPersistence, got.Kind())
	require.Equal(t, "failed to update order state", got.Message())
	require.Equal(t, "gid://shopify/Order/1", got.Details()["order_id"])
	require.ErrorIs(t, wrapped, cause)
	require.True(t, IsKind(wrapped, KindPersistence))
	require.False(t, IsKind(wrapped, KindRemoteSource))
}

func TestFromWrapsPlainErrors(t *testing.T) {
	got := From(errors.New("raw upstream payload"))
	require.Equal(t, KindInternal, got.Kind())
	require.Equal(t, "internal error", got.Message())
	require.Nil(t, From(nil))
}

func TestNewDefaultsMessageToKind(t *testing.T) {
	require.Equal(t, "validation", New(KindValidation, "").Error())
}
