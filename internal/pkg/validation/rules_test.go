package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Phone    string `validate:"phone"`
	ID       string `validate:"schoolid"`
	Password string `validate:"password"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		input signup
		valid bool
	}{
		{"valid", signup{"5551234567", "STU001", "secret1"}, true},
		{"international phone", signup{"+905551234567", "FAC-12", "secret1"}, true},
		{"short phone", signup{"123", "STU001", "secret1"}, false},
		{"bad id", signup{"5551234567", "STU 001", "secret1"}, false},
		{"short password", signup{"5551234567", "STU001", "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
