package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Authentication errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidAmount ErrorCode = "INVALID_AMOUNT"

	// Business rule errors
	ErrCodeInsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientHoldings ErrorCode = "INSUFFICIENT_HOLDINGS"
	ErrCodeOversell             ErrorCode = "OVERSELL"
	ErrCodeBonusAlreadyClaimed  ErrorCode = "BONUS_ALREADY_CLAIMED"

	// Resource errors
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodePortfolioNotFound ErrorCode = "PORTFOLIO_NOT_FOUND"
	ErrCodeAssetNotFound     ErrorCode = "ASSET_NOT_FOUND"
	ErrCodeDuplicateEntry    ErrorCode = "DUPLICATE_ENTRY"

	// System errors
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeInternal    ErrorCode = "INTERNAL_ERROR"
	ErrCodeRateLimit   ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError represents a standardized error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
	}
}

// Wrap wraps an existing error with AppError, preserving the original message
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Details: map[string]interface{}{
			"original_error": err.Error(),
		},
	}
}

// AddDetail adds a detail to the error
func (e *AppError) AddDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsAppError extracts an *AppError from an error chain, if present
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given error code
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// getHTTPStatusCode maps error codes to HTTP status codes
func getHTTPStatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized, ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeInvalidAmount:
		return http.StatusBadRequest
	case ErrCodeUserNotFound, ErrCodePortfolioNotFound, ErrCodeAssetNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateEntry, ErrCodeBonusAlreadyClaimed:
		return http.StatusConflict
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeInsufficientFunds, ErrCodeInsufficientHoldings, ErrCodeOversell:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidAmount(message string) *AppError {
	return New(ErrCodeInvalidAmount, message)
}

func UserNotFound() *AppError {
	return New(ErrCodeUserNotFound, "user not found")
}

func PortfolioNotFound() *AppError {
	return New(ErrCodePortfolioNotFound, "portfolio not found")
}

func AssetNotFound(symbol string) *AppError {
	return New(ErrCodeAssetNotFound, fmt.Sprintf("asset %s not found", symbol))
}

func InsufficientFunds(message string) *AppError {
	return New(ErrCodeInsufficientFunds, message)
}

func InsufficientHoldings(symbol string) *AppError {
	return New(ErrCodeInsufficientHoldings, fmt.Sprintf("no holdings of %s to sell", symbol))
}

func Oversell(message string) *AppError {
	return New(ErrCodeOversell, message)
}

func Persistence(err error) *AppError {
	return Wrap(err, ErrCodePersistence, "storage operation failed")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}
