package validator

import (
	"context"
	"testing"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func kindOf(err error) usecase.ErrorKind {
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		return ""
	}
	return he.Kind
}

func messageOf(err error) string {
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		return ""
	}
	return he.Message
}

func TestRequestValidator_Messages(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Quantity int64  `validate:"gte=1"`
	}
	v := New()

	err := v.Validate(req{Quantity: 1})
	assert.Equal(t, usecase.KindInvalidInput, kindOf(err))
	assert.Equal(t, "email is required", messageOf(err))

	err = v.Validate(req{Email: "x", Quantity: 1})
	assert.Equal(t, "email must be a valid email", messageOf(err))

	err = v.Validate(req{Email: "a@example.com", Quantity: 0})
	assert.Equal(t, "quantity must be at least 1", messageOf(err))

	assert.NoError(t, v.Validate(req{Email: "a@example.com", Quantity: 2}))
}

func TestAuthValidator(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRegister(ctx, "a@example.com", "password123", "Alice"))
	assert.Equal(t, "password must be at least 8 characters", messageOf(v.ValidateRegister(ctx, "a@example.com", "short", "Alice")))
	assert.Equal(t, usecase.KindInvalidInput, kindOf(v.ValidateRegister(ctx, "a@example.com", "password123", "")))
	assert.Equal(t, usecase.KindInvalidInput, kindOf(v.ValidateLogin(ctx, "", "x")))
}
