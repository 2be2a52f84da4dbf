package validator

import (
	"context"

	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// パスワード最低文字数
const minPasswordLength = 8

type registerFields struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
	Name     string `validate:"required,max=255"`
}

type loginFields struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type contactFields struct {
	Name    string `validate:"required,max=255"`
	Email   string `validate:"required,email"`
	Subject string `validate:"max=255"`
	Message string `validate:"required,max=5000"`
}

type authValidator struct {
	v *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{v: validator.New()}
}

// サインアップの入力を検証（email重複はDBの一意制約で弾く）
func (a *authValidator) ValidateRegister(ctx context.Context, email, password, name string) error {
	if len(password) < minPasswordLength {
		return usecase.NewError(usecase.KindInvalidInput, "password must be at least 8 characters")
	}
	if err := a.v.StructCtx(ctx, registerFields{Email: email, Password: password, Name: name}); err != nil {
		return toInvalidInput(err)
	}
	return nil
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, email, password string) error {
	if err := a.v.StructCtx(ctx, loginFields{Email: email, Password: password}); err != nil {
		return toInvalidInput(err)
	}
	return nil
}

type contactValidator struct {
	v *validator.Validate
}

func NewContactValidator() usecase.ContactValidator {
	return &contactValidator{v: validator.New()}
}

func (c *contactValidator) ValidateContact(ctx context.Context, in usecase.ContactInput) error {
	err := c.v.StructCtx(ctx, contactFields{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	})
	if err != nil {
		return toInvalidInput(err)
	}
	return nil
}
