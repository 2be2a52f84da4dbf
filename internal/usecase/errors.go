package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの分類。handlerはStatusをそのまま返す。
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "INVALID_INPUT"
	KindInvalidAddress    ErrorKind = "INVALID_ADDRESS"
	KindEmptyCart         ErrorKind = "EMPTY_CART"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindPaymentIncomplete ErrorKind = "PAYMENT_INCOMPLETE"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindUpstream          ErrorKind = "UPSTREAM"
	KindInternal          ErrorKind = "INTERNAL"
)

var kindStatus = map[ErrorKind]int{
	KindInvalidInput:      http.StatusBadRequest,
	KindInvalidAddress:    http.StatusBadRequest,
	KindEmptyCart:         http.StatusBadRequest,
	KindInsufficientStock: http.StatusBadRequest,
	KindPaymentIncomplete: http.StatusBadRequest,
	KindInvalidState:      http.StatusConflict,
	KindUnauthenticated:   http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusConflict,
	KindUpstream:          http.StatusBadGateway,
	KindInternal:          http.StatusInternalServerError,
}

type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	// ログ用。レスポンスには出さない
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

func NewError(kind ErrorKind, message string) error {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &HTTPError{Status: status, Kind: kind, Message: message}
}

// DBなど想定外のエラー。中身は返さずログに残す。
func internalError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "internal error",
		Cause:   cause,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// errがkindのHTTPErrorか
func IsKind(err error, kind ErrorKind) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Kind == kind
}

func errUnauthenticated() error {
	return NewError(KindUnauthenticated, "unauthorized")
}
