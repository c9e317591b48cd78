// Package errors defines the sentinel errors and the AppError wrapper shared
// by the extractors, the scorer and the HTTP service.
//
// The InvalidParameter, EmptyInput and IOFailure sentinels form the
// diagnostic taxonomy: an operation failing with one of them still returns a
// valid empty result, and the error only describes why it is empty.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrEmptyInput       = errors.New("empty input")
	ErrIOFailure        = errors.New("io failure")

	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidParameterf builds a diagnostic for a malformed size bound, n-gram
// range or source selector.
func InvalidParameterf(format string, args ...any) *AppError {
	return Newf(ErrInvalidParameter, http.StatusBadRequest, format, args...)
}

// EmptyInputf builds a diagnostic for zero-length text or an empty input BoW.
func EmptyInputf(format string, args ...any) *AppError {
	return Newf(ErrEmptyInput, http.StatusOK, format, args...)
}

// IOFailuref builds a diagnostic for a failed text read.
func IOFailuref(format string, args ...any) *AppError {
	return Newf(ErrIOFailure, http.StatusUnprocessableEntity, format, args...)
}

// IsDiagnostic reports whether err belongs to the recoverable taxonomy of
// the core operations.
func IsDiagnostic(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrIOFailure)
}

// Kind returns a short machine-readable name for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrIOFailure):
		return "io_failure"
	default:
		return "error"
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDocumentExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyInput):
		return http.StatusOK
	case errors.Is(err, ErrIOFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
