// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrInternalError = errors.New("internal error")
)

// Error categories rendered in the "error" field of every JSON error body.
const (
	CategoryBadRequest       = "bad request"
	CategoryValidation       = "validation error"
	CategoryUnauthorized     = "unauthorized"
	CategoryForbidden        = "forbidden"
	CategoryNotFound         = "not found"
	CategoryMethodNotAllowed = "method not allowed"
	CategoryTooManyRequests  = "too many requests"
	CategoryInternal         = "internal server error"
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Category   string
	Fields     map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(
	err error,
	message string,
	statusCode int,
	category string,
) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Category:   category,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func BadRequestError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		CategoryBadRequest,
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		CategoryUnauthorized,
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(
		ErrForbidden,
		message,
		http.StatusForbidden,
		CategoryForbidden,
	)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		CategoryNotFound,
	)
}

func MethodNotAllowedError() *AppError {
	return NewAppError(
		nil,
		"method not allowed",
		http.StatusMethodNotAllowed,
		CategoryMethodNotAllowed,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid credentials",
		http.StatusUnauthorized,
		CategoryUnauthorized,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		CategoryUnauthorized,
	)
}

// ValidationError reports domain rule violations keyed by request field.
func ValidationError(fields map[string]string) *AppError {
	appErr := NewAppError(
		ErrInvalidInput,
		"validation failed",
		http.StatusBadRequest,
		CategoryValidation,
	)
	appErr.Fields = fields
	return appErr
}

func DuplicateError(field string) *AppError {
	return ValidationError(map[string]string{
		field: field + " already registered",
	})
}

func TooManyRequestsError(retryAfter int) *AppError {
	return NewAppError(
		nil,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		CategoryTooManyRequests,
	)
}
