package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "invalid argument", err: InvalidArgument("bad quantity"), want: KindInvalidArgument},
		{name: "wrapped conflict", err: fmt.Errorf("checkout: %w", Conflict("open order")), want: KindConflict},
		{name: "foreign error", err: errors.New("boom"), want: KindInternal},
		{name: "internal", err: Internal(errors.New("db down"), "storage unavailable"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(NotFound("product not found"), KindNotFound))
	assert.False(t, IsKind(NotFound("product not found"), KindConflict))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestPublicMessage_HidesInternalCause(t *testing.T) {
	err := Internal(errors.New("dial tcp 10.0.0.1:5432: connection refused"), "storage unavailable")

	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "empty cart", PublicMessage(InvalidState("empty cart")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(KindConflict, cause, "existing open order")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "existing open order: unique violation", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidArgument))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(KindInvalidState))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindPermissionDenied))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}
