package errors

import (
	goerrors "errors"
	"fmt"
)

type ErrorCode string

const (
	// Generic codes
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Fatal configuration problems (missing/malformed credential master key)
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// Credential vault blob failed length or authentication checks
	ErrCorruptedCredential ErrorCode = "CORRUPTED_CREDENTIAL"

	// Auth-recoverable: the user must reconnect the provider account
	ErrAccountRevoked ErrorCode = "ACCOUNT_REVOKED"
	ErrRefreshFailed  ErrorCode = "REFRESH_FAILED"

	// Sync-state errors: caller logic errors, never retried
	ErrNotConnected      ErrorCode = "NOT_CONNECTED"
	ErrNoPrimaryCalendar ErrorCode = "NO_PRIMARY_CALENDAR"
	ErrAlreadySynced     ErrorCode = "ALREADY_SYNCED"
	ErrNotSynced         ErrorCode = "NOT_SYNCED"

	// Provider call outcomes after classification at the API boundary
	ErrProviderTransient ErrorCode = "PROVIDER_TRANSIENT"
	ErrProviderPermanent ErrorCode = "PROVIDER_ERROR"
)

// AppError is the application-wide error carrier. Code drives both the HTTP
// mapping in controllers and the caller-facing sync result codes.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the application error code, unwrapping as needed, and
// defaults to ErrInternalServer for plain errors.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if goerrors.As(err, &ae) {
		return ae.Code
	}
	return ErrInternalServer
}

// IsCode reports whether err carries an AppError with the given code
// anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	return goerrors.As(err, &ae) && ae.Code == code
}
