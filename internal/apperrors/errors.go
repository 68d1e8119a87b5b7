package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, machine-readable identifier of an application error.
// The set of codes is closed; handlers map each one to a response deterministically.
type Code string

const (
	CodeNoSplits                Code = "NO_SPLITS"
	CodeInvalidSplits           Code = "INVALID_SPLITS"
	CodeInvalidSplit            Code = "INVALID_SPLIT"
	CodeInvalidAccount          Code = "INVALID_ACCOUNT"
	CodeInvalidCategory         Code = "INVALID_CATEGORY"
	CodeCannotModifyMirror      Code = "CANNOT_MODIFY_MIRROR"
	CodeCannotUpdateMirror      Code = "CANNOT_UPDATE_MIRROR"
	CodeCannotDeleteMirror      Code = "CANNOT_DELETE_MIRROR"
	CodeStatusError             Code = "STATUS_ERROR"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"
	CodeNotFound                Code = "NOT_FOUND"
	CodeNotOwned                Code = "NOT_OWNED"
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeConflict                Code = "CONFLICT"
	CodeUnauthorized            Code = "UNAUTHORIZED"
	CodeInternal                Code = "INTERNAL_ERROR"
)

// AppError carries a Code, a human readable message and an optional cause.
type AppError struct {
	Code       Code
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError carrying the same code, so sentinel comparisons
// such as errors.Is(err, ErrNotFound) work for errors built with New.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds an AppError with the given code and formatted message.
func New(code Code, format string, args ...any) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: HTTPStatus(code),
	}
}

// Wrap builds an AppError that keeps err as its cause.
func Wrap(code Code, err error, format string, args ...any) *AppError {
	appErr := New(code, format, args...)
	appErr.Err = err
	return appErr
}

// NewAppError wraps an infrastructure failure. The status code is kept for
// the HTTP layer; the error is always classified as INTERNAL_ERROR.
func NewAppError(statusCode int, message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound     = &AppError{Code: CodeNotFound, Message: "resource not found", StatusCode: http.StatusNotFound}
	ErrNotOwned     = &AppError{Code: CodeNotOwned, Message: "resource not owned by caller", StatusCode: http.StatusForbidden}
	ErrValidation   = &AppError{Code: CodeValidation, Message: "validation error", StatusCode: http.StatusBadRequest}
	ErrConflict     = &AppError{Code: CodeConflict, Message: "resource was modified concurrently", StatusCode: http.StatusConflict}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized, Message: "unauthorized", StatusCode: http.StatusUnauthorized}
	ErrInternal     = &AppError{Code: CodeInternal, Message: "internal error", StatusCode: http.StatusInternalServerError}
)

// CodeOf extracts the Code of the first AppError in err's chain.
// Errors that are not AppErrors are reported as INTERNAL_ERROR.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps a Code to the HTTP status returned to clients.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNoSplits, CodeInvalidSplits, CodeInvalidSplit, CodeInvalidAccount,
		CodeInvalidCategory, CodeValidation, CodeStatusError:
		return http.StatusBadRequest
	case CodeInvalidStatusTransition, CodeConflict:
		return http.StatusConflict
	case CodeCannotModifyMirror, CodeCannotUpdateMirror, CodeCannotDeleteMirror:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotOwned:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
