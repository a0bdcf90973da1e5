package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `validate:"required,email"`
	Age   int    `validate:"min=18"`
}

func TestHandleValidationError(t *testing.T) {
	err := validator.New().Struct(sample{Email: "nope", Age: 3})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "email must be a valid email address", detail.Message)

	list, ok := detail.Details.([]ErrorDetail)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "age", list[1].Field)
	assert.Equal(t, "age must be at least 18", list[1].Message)
}

func TestHandleValidationErrorMalformed(t *testing.T) {
	detail := HandleValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request format", detail.Message)
	assert.Equal(t, "unexpected EOF", detail.Details)
}

func TestNewAPIResponse(t *testing.T) {
	resp := NewAPIResponse(map[string]int{"n": 1})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Timestamp.IsZero())
}
