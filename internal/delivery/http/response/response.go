// Package response writes the JSON envelope of every API response.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	deliverycontext "harbor/internal/delivery/context"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/state"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses. Data carries the
// state slice after a failed action so clients can render its error field.
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Data  any        `json:"data,omitempty"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Additional error context (only for 4xx errors)
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"`
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Data: data,
		Meta: meta(c),
	})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	return ErrorWithData(c, statusCode, errorCode, message, details, nil)
}

// ErrorWithData returns an error response that also carries data.
func ErrorWithData(c echo.Context, statusCode int, errorCode, message string, details, data any) error {
	// No details for 5xx or authentication/authorization errors
	if statusCode >= 500 || statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Data: data,
		Meta: meta(c),
	})
}

// BindingError returns a 400 for a request body that could not be decoded.
func BindingError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, "INVALID_INPUT", message, nil)
}

// Unauthorized returns a 401 error
func Unauthorized(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusUnauthorized, errorCode, message, nil)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, nil)
}

// Slice answers an action creator call: the slice on success, otherwise the
// slice together with the failure's status, code and message. Errors that are
// not AppErrors are left to the error middleware.
func Slice(c echo.Context, data any, err error) error {
	if err == nil {
		return Success(c, http.StatusOK, data)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return ErrorWithData(c, appErr.HTTPCode(), appErr.ErrorCode(), state.FailureMessage(err), details(appErr, err), data)
	}

	return errors.WithStack(err)
}

// details exposes validation messages, which name the offending fields.
func details(appErr domainerrors.AppError, err error) any {
	if appErr.Details() != "" {
		return appErr.Details()
	}
	if errors.Is(err, domainerrors.ErrValidationFailed) {
		return err.Error()
	}

	return nil
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}
