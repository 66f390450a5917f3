// Package errors defines the sentinel error kinds shared by the catalog,
// the recommendation engine and the transport layers, plus an AppError
// wrapper that carries a user-facing message and HTTP status.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDataUnavailable  = errors.New("catalog data unavailable")
	ErrTitleNotFound    = errors.New("title not found")
	ErrIndexOutOfRange  = errors.New("catalog index out of range")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	// Suggestions lists close catalog titles for not-found errors.
	Suggestions []string
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

// InvalidParameter is shorthand for a 400 ErrInvalidParameter.
func InvalidParameter(format string, args ...any) *AppError {
	return Newf(ErrInvalidParameter, http.StatusBadRequest, format, args...)
}

// TitleNotFound builds the terminal not-found error of the recommend path.
func TitleNotFound(title string, suggestions []string) *AppError {
	e := Newf(ErrTitleNotFound, http.StatusNotFound, "movie '%s' not found", title)
	e.Suggestions = suggestions
	return e
}

// DataUnavailable wraps a load failure so that both the sentinel and the
// underlying cause remain inspectable with errors.Is.
func DataUnavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrDataUnavailable, cause)
}

// IndexOutOfRange reports an accessor called with a bad catalog index.
func IndexOutOfRange(index, size int) error {
	return fmt.Errorf("%w: index %d, catalog size %d", ErrIndexOutOfRange, index, size)
}

// IsUserError reports whether err is an expected, caller-caused outcome
// that should not be logged as a system fault.
func IsUserError(err error) bool {
	return errors.Is(err, ErrTitleNotFound) || errors.Is(err, ErrInvalidParameter)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrTitleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// SuggestionsOf returns the did-you-mean titles attached to err, if any.
func SuggestionsOf(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Suggestions
	}
	return nil
}
