package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := InsufficientStock(7)
	wrapped := fmt.Errorf("commit order: %w", err)

	require.ErrorIs(t, wrapped, ErrInsufficientStock)
	require.ErrorIs(t, wrapped, InsufficientStock(7))
	assert.NotErrorIs(t, wrapped, InsufficientStock(8))
	assert.NotErrorIs(t, wrapped, ErrOutOfStock)
	assert.Equal(t, int64(7), ProductIDOf(wrapped))
}

func TestStorageFailureKeepsTaxonomy(t *testing.T) {
	assert.NoError(t, StorageFailure(nil))

	raw := errors.New("connection reset")
	err := StorageFailure(raw)
	require.ErrorIs(t, err, ErrStorageFailure)
	require.ErrorIs(t, err, raw)

	domain := ProductUnavailable(3)
	assert.Same(t, domain, StorageFailure(domain))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeEmptyCart, CodeOf(fmt.Errorf("x: %w", ErrEmptyCart)))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidArgument:    http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeProductUnavailable: http.StatusConflict,
		CodeOutOfStock:         http.StatusConflict,
		CodeInsufficientStock:  http.StatusConflict,
		CodeEmptyCart:          http.StatusConflict,
		CodeCheckoutInProgress: http.StatusConflict,
		CodeCheckoutTimeout:    http.StatusServiceUnavailable,
		CodeStorageFailure:     http.StatusInternalServerError,
		CodeUnknown:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "insufficient stock (product 4)", InsufficientStock(4).Error())
	assert.Equal(t, "storage failure: disk full", StorageFailure(errors.New("disk full")).Error())
	assert.True(t, IsTransient(CheckoutTimeout(nil)))
	assert.False(t, IsTransient(ErrEmptyCart))
}
