package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 錯誤分類, 對外回應與 log 都以此為準
type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeProductUnavailable Code = "PRODUCT_UNAVAILABLE"
	CodeOutOfStock         Code = "OUT_OF_STOCK"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeCheckoutInProgress Code = "CHECKOUT_IN_PROGRESS"
	CodeCheckoutTimeout    Code = "CHECKOUT_TIMEOUT"
	CodeStorageFailure     Code = "STORAGE_FAILURE"
	CodeUnknown            Code = "UNKNOWN"
)

type Error struct {
	Code      Code
	ProductID int64
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.ProductID > 0 {
		msg = fmt.Sprintf("%s (product %d)", msg, e.ProductID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 以 Code 比對, target 帶 ProductID 時一併比對
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.ProductID == 0 || t.ProductID == e.ProductID
}

var (
	ErrInvalidArgument    = &Error{Code: CodeInvalidArgument, Msg: "invalid argument"}
	ErrNotFound           = &Error{Code: CodeNotFound, Msg: "not found"}
	ErrProductUnavailable = &Error{Code: CodeProductUnavailable, Msg: "product unavailable"}
	ErrOutOfStock         = &Error{Code: CodeOutOfStock, Msg: "out of stock"}
	ErrInsufficientStock  = &Error{Code: CodeInsufficientStock, Msg: "insufficient stock"}
	ErrEmptyCart          = &Error{Code: CodeEmptyCart, Msg: "cart is empty"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Msg: "unauthorized"}
	ErrCheckoutInProgress = &Error{Code: CodeCheckoutInProgress, Msg: "checkout already in progress"}
	ErrCheckoutTimeout    = &Error{Code: CodeCheckoutTimeout, Msg: "checkout timed out"}
	ErrStorageFailure     = &Error{Code: CodeStorageFailure, Msg: "storage failure"}
)

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func ProductNotFound(productID int64) *Error {
	return &Error{Code: CodeNotFound, ProductID: productID, Msg: "product not found"}
}

func ProductUnavailable(productID int64) *Error {
	return &Error{Code: CodeProductUnavailable, ProductID: productID, Msg: "product unavailable"}
}

func OutOfStock(productID int64) *Error {
	return &Error{Code: CodeOutOfStock, ProductID: productID, Msg: "out of stock"}
}

func InsufficientStock(productID int64) *Error {
	return &Error{Code: CodeInsufficientStock, ProductID: productID, Msg: "insufficient stock"}
}

func CheckoutTimeout(err error) *Error {
	return &Error{Code: CodeCheckoutTimeout, Msg: "checkout timed out", Err: err}
}

// StorageFailure 包裝非分類錯誤, 已經是分類錯誤則原樣回傳
func StorageFailure(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Code: CodeStorageFailure, Msg: "storage failure", Err: err}
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func ProductIDOf(err error) int64 {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ProductID
	}
	return 0
}

// IsTransient 呼叫端可以直接重試
func IsTransient(err error) bool {
	switch CodeOf(err) {
	case CodeCheckoutTimeout, CodeCheckoutInProgress:
		return true
	}
	return false
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeProductUnavailable, CodeOutOfStock, CodeInsufficientStock, CodeEmptyCart, CodeCheckoutInProgress:
		return http.StatusConflict
	case CodeCheckoutTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
