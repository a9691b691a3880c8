package errors

import (
	"net/http"

	"harbor/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User profile not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"This email is already registered",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"Failed to create user",
		"",
	)

	ErrUserUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_UPDATE_FAILED",
		"Failed to update user profile",
		"",
	)

	ErrUserPortNotFound = NewBaseError(
		http.StatusBadRequest,
		"USER_PORT_NOT_FOUND",
		"User port or ID not found",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password",
		"",
	)

	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Sign in required",
		"",
	)

	ErrSessionInvalid = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_INVALID",
		"Invalid or expired session",
		"",
	)

	ErrFederatedSignInFailed = NewBaseError(
		http.StatusUnauthorized,
		"FEDERATED_SIGN_IN_FAILED",
		"Google sign-in failed",
		"",
	)

	ErrPasswordMismatch = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_MISMATCH",
		"Passwords do not match!",
		"",
	)

	ErrRegistrationIncomplete = NewBaseError(
		http.StatusBadRequest,
		"REGISTRATION_INCOMPLETE",
		"Registration is not complete",
		"",
	)

	// Catalog-related errors
	ErrCategoriesNotFound = NewBaseError(
		http.StatusNotFound,
		"CATEGORIES_NOT_FOUND",
		"No categories found",
		"",
	)

	ErrGoodNotFound = NewBaseError(
		http.StatusNotFound,
		"GOOD_NOT_FOUND",
		"Good not found",
		"",
	)

	ErrPortRequired = NewBaseError(
		http.StatusBadRequest,
		"PORT_REQUIRED",
		"A port must be selected",
		"",
	)

	ErrUploadFailed = NewBaseError(
		http.StatusBadGateway,
		"UPLOAD_FAILED",
		"Failed to upload image",
		"",
	)

	ErrInvalidImage = NewBaseError(
		http.StatusBadRequest,
		"INVALID_IMAGE",
		"Unsupported or corrupt image",
		"",
	)

	// Order-related errors
	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"Order not found",
		"",
	)

	ErrOrderFinal = NewBaseError(
		http.StatusConflict,
		"ORDER_FINAL",
		"Order can no longer be changed",
		"",
	)

	// Chat-related errors
	ErrChatNotFound = NewBaseError(
		http.StatusNotFound,
		"CHAT_NOT_FOUND",
		"Chat not found",
		"",
	)

	ErrEmptyMessage = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_MESSAGE",
		"Message text is empty",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// System-level errors
	ErrGatewayUnavailable = NewBaseError(
		http.StatusBadGateway,
		"GATEWAY_UNAVAILABLE",
		"Remote service unavailable",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"An unknown error occurred",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Permission denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// GatewayError represents a failed call to the remote data gateway, implementing the AppError interface
type GatewayError struct {
	err     error
	details string
}

// NewGatewayError creates a gateway-related error
func NewGatewayError(err error, details string) AppError {
	return &GatewayError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return errors.Wrap(e.err, "gateway call failed").Error()
}

// Unwrap returns the underlying gateway error
func (e *GatewayError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *GatewayError) HTTPCode() int {
	return http.StatusBadGateway
}

// ErrorCode returns the business error code
func (e *GatewayError) ErrorCode() string {
	return "GATEWAY_ERROR"
}

// Message returns the user-friendly error message
func (e *GatewayError) Message() string {
	if e.err != nil && e.err.Error() != "" {
		return e.err.Error()
	}

	return ErrGatewayUnavailable.Message()
}

// Details returns detailed error information
func (e *GatewayError) Details() string {
	return e.details
}
