package errors

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Is(t *testing.T) {
	assert.True(t, Is(NewAPIError("delete", http.StatusNotFound, ""), ErrNotFound))
	assert.True(t, Is(NewAPIError("list", http.StatusBadGateway, "bad"), ErrRemoteUnavailable))
	assert.False(t, Is(NewAPIError("create", http.StatusBadRequest, "bad"), ErrNotFound))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("list", nil))
	err := Wrap("list", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "list")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "is required")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "validation failed for field name: is required", err.Error())

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("product", "7")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "product with ID 7 not found", err.Error())
}
