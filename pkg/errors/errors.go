package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard error types
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternal           = errors.New("internal server error")
	ErrValidation         = errors.New("validation error")
	ErrIllegalState       = errors.New("illegal state transition")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError outside the predefined kinds
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// Wrap is New with a cause
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{Err: err, Code: code, Message: message, StatusCode: statusCode}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Kinds. Each constructor wraps its sentinel so callers can test with Is.

func kind(sentinel error, code string, status int, message string) *AppError {
	return &AppError{Err: sentinel, Code: code, Message: message, StatusCode: status}
}

func NotFound(resource string) *AppError {
	return kind(ErrNotFound, "NOT_FOUND", http.StatusNotFound, resource+" not found")
}

func Unauthorized(message string) *AppError {
	return kind(ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return kind(ErrForbidden, "FORBIDDEN", http.StatusForbidden, message)
}

func BadRequest(message string) *AppError {
	return kind(ErrBadRequest, "BAD_REQUEST", http.StatusBadRequest, message)
}

func Conflict(message string) *AppError {
	return kind(ErrConflict, "CONFLICT", http.StatusConflict, message)
}

// DuplicateRelationship reports that a pairwise link (alternative, interaction) already exists.
func DuplicateRelationship(relation string) *AppError {
	return kind(ErrConflict, "DUPLICATE_RELATIONSHIP", http.StatusConflict, relation+" already exists")
}

// IllegalState reports a transition attempted from a state that does not allow it.
func IllegalState(message string) *AppError {
	return kind(ErrIllegalState, "ILLEGAL_STATE", http.StatusBadRequest, message)
}

// IllegalStateFor is IllegalState with the offending ids listed in Details.
func IllegalStateFor(message string, ids []string) *AppError {
	return IllegalState(message).WithDetails(map[string]string{"ids": strings.Join(ids, ",")})
}

func TooManyRequests(message string) *AppError {
	return kind(ErrTooManyRequests, "TOO_MANY_REQUESTS", http.StatusTooManyRequests, message)
}

func Internal(message string) *AppError {
	return kind(ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError, message)
}

func Validation(details map[string]string) *AppError {
	return kind(ErrValidation, "VALIDATION_ERROR", http.StatusBadRequest, "validation failed").WithDetails(details)
}

// ValidationField is Validation for a single field.
func ValidationField(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}

func InvalidCredentials() *AppError {
	return kind(ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
}

func TokenExpired() *AppError {
	return kind(ErrTokenExpired, "TOKEN_EXPIRED", http.StatusUnauthorized, "token has expired")
}

func TokenInvalid() *AppError {
	return kind(ErrTokenInvalid, "TOKEN_INVALID", http.StatusUnauthorized, "invalid token")
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound reports whether err is, or wraps, a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIllegalState reports whether err is, or wraps, an illegal-state error.
func IsIllegalState(err error) bool {
	return errors.Is(err, ErrIllegalState)
}
