package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrAuthenticationRequired is returned when the caller has no valid credential.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrDeveloperNotFound is returned when a developer profile does not exist.
	ErrDeveloperNotFound = errors.New("developer not found")
	// ErrSelfViewNotAllowed is returned when a user runs the contact action on their own profile.
	ErrSelfViewNotAllowed = errors.New("contact action on own profile is not allowed")
	// ErrRoleNotPermitted is returned when the caller's role may not perform the action.
	ErrRoleNotPermitted = errors.New("role not permitted")
	// ErrQuotaExceeded is returned when a company has used its daily contact quota.
	ErrQuotaExceeded = errors.New("daily contact quota exceeded")
	// ErrLedgerUnavailable is returned when the contact ledger cannot be reached in time. Retryable.
	ErrLedgerUnavailable = errors.New("contact ledger unavailable")
	// ErrProfileAlreadyExists is returned when a user already owns a developer profile.
	ErrProfileAlreadyExists = errors.New("developer profile already exists")
)

// QuotaExceededError carries what a client needs to wait out the daily quota.
type QuotaExceededError struct {
	Limit    int
	ResetsAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: limit %d, resets at %s", ErrQuotaExceeded, e.Limit, e.ResetsAt.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrQuotaExceeded) match.
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// LedgerUnavailable wraps a storage failure as ErrLedgerUnavailable, keeping the cause.
func LedgerUnavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, op, cause)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		return NewHTTPError(http.StatusUnauthorized, ErrAuthenticationRequired.Error(), "AUTHENTICATION_REQUIRED")
	case errors.Is(err, ErrDeveloperNotFound):
		return NewHTTPError(http.StatusNotFound, ErrDeveloperNotFound.Error(), "DEVELOPER_NOT_FOUND")
	case errors.Is(err, ErrSelfViewNotAllowed):
		return NewHTTPError(http.StatusBadRequest, ErrSelfViewNotAllowed.Error(), "SELF_VIEW_NOT_ALLOWED")
	case errors.Is(err, ErrRoleNotPermitted):
		return NewHTTPError(http.StatusForbidden, ErrRoleNotPermitted.Error(), "ROLE_NOT_PERMITTED")
	case errors.Is(err, ErrQuotaExceeded):
		httpErr := NewHTTPError(http.StatusTooManyRequests, ErrQuotaExceeded.Error(), "QUOTA_EXCEEDED")
		var qe *QuotaExceededError
		if errors.As(err, &qe) {
			httpErr.Details = map[string]interface{}{
				"limit":     qe.Limit,
				"remaining": 0,
				"resets_at": qe.ResetsAt.UTC().Format(time.RFC3339),
			}
		}
		return httpErr
	case errors.Is(err, ErrLedgerUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, ErrLedgerUnavailable.Error(), "LEDGER_UNAVAILABLE")
	case errors.Is(err, ErrProfileAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrProfileAlreadyExists.Error(), "PROFILE_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
