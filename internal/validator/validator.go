package validator

import (
	"fmt"
	"strings"

	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// echo.Validator の実装。リクエストDTOの `validate` タグを検証する。
type RequestValidator struct {
	v *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return toInvalidInput(err)
	}
	return nil
}

// 最初の違反だけをメッセージにする
func toInvalidInput(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return usecase.NewError(usecase.KindInvalidInput, "invalid input")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return usecase.NewError(usecase.KindInvalidInput, fmt.Sprintf("%s is required", field))
	case "email":
		return usecase.NewError(usecase.KindInvalidInput, fmt.Sprintf("%s must be a valid email", field))
	case "min", "gte", "gt":
		return usecase.NewError(usecase.KindInvalidInput, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max", "lte":
		return usecase.NewError(usecase.KindInvalidInput, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	default:
		return usecase.NewError(usecase.KindInvalidInput, fmt.Sprintf("%s is invalid", field))
	}
}
