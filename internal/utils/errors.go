package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// Custom error types for the application
var (
	ErrNotFound            = errors.New(constants.ErrorNotFound)
	ErrUnauthorized        = errors.New(constants.ErrorUnauthorized)
	ErrForbidden           = errors.New(constants.ErrorForbidden)
	ErrBadRequest          = errors.New(constants.ErrorBadRequest)
	ErrInternalServer      = errors.New(constants.ErrorInternalServer)
	ErrValidation          = errors.New(constants.ErrorValidation)
	ErrDuplicate           = errors.New(constants.ErrorDuplicate)
	ErrInvalidCredentials  = errors.New(constants.ErrorInvalidCredentials)
	ErrExpiredToken        = errors.New(constants.ErrorExpiredToken)
	ErrInvalidToken        = errors.New(constants.ErrorInvalidToken)
	ErrAccountSuspended    = errors.New(constants.ErrorAccountSuspended)
	ErrAccountNotConfirmed = errors.New(constants.ErrorAccountNotConfirmed)
	ErrAccountLocked       = errors.New(constants.ErrorAccountLocked)
)

// Moderation errors. They are returned to the caller of the operation and never retried.
var (
	ErrAlreadyBanned     = errors.New(constants.ErrorAlreadyBanned)
	ErrNotBanned         = errors.New(constants.ErrorNotBanned)
	ErrSelfReport        = errors.New(constants.ErrorSelfReport)
	ErrDuplicateRecent   = errors.New(constants.ErrorDuplicateReport)
	ErrInvalidTransition = errors.New(constants.ErrorInvalidTransition)
)

// AppError represents an application error with additional context
type AppError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Message    string // User-friendly error message
	DevInfo    string // Additional information for developers
	Field      string // Field related to the error (for validation errors)
	Details    map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given error and status code
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return &AppError{
		Err:        ErrUnauthorized,
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = constants.MsgAccessDenied
	}
	return &AppError{
		Err:        ErrForbidden,
		StatusCode: http.StatusForbidden,
		Message:    message,
	}
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgInternalServerError,
		DevInfo:    devInfo,
	}
}

// NewDuplicateError creates a new duplicate resource error
func NewDuplicateError(resourceType, field string, value interface{}) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("%s with %s '%v' already exists", resourceType, field, value),
		Field:      field,
	}
}

// NewInvalidCredentialsError creates a new invalid credentials error
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusUnauthorized,
		Message:    constants.MsgInvalidPassword,
	}
}

// NewExpiredTokenError creates a new expired token error
func NewExpiredTokenError() *AppError {
	return &AppError{
		Err:        ErrExpiredToken,
		StatusCode: http.StatusUnauthorized,
		Message:    "Token has expired",
	}
}

// NewInvalidTokenError creates a new invalid token error
func NewInvalidTokenError() *AppError {
	return &AppError{
		Err:        ErrInvalidToken,
		StatusCode: http.StatusUnauthorized,
		Message:    constants.MsgInvalidToken,
	}
}

// NewAccountSuspendedError reports a banned account. The reason and expiry
// are exposed to the client so it can explain the suspension.
func NewAccountSuspendedError(reason string, until *time.Time) *AppError {
	details := map[string]any{"reason": reason}
	if until != nil {
		details["banned_until"] = until.UTC().Format(time.RFC3339)
	}
	return &AppError{
		Err:        ErrAccountSuspended,
		StatusCode: http.StatusForbidden,
		Message:    constants.MsgAccountSuspended,
		Details:    details,
	}
}

// NewAccountNotConfirmedError reports an unconfirmed account.
func NewAccountNotConfirmedError() *AppError {
	return &AppError{
		Err:        ErrAccountNotConfirmed,
		StatusCode: http.StatusForbidden,
		Message:    constants.MsgAccountNotConfirmed,
	}
}

// NewAccountLockedError reports a locked-out client.
func NewAccountLockedError(retryAfter time.Duration) *AppError {
	return &AppError{
		Err:        ErrAccountLocked,
		StatusCode: http.StatusTooManyRequests,
		Message:    constants.MsgAccountLocked,
		Details:    map[string]any{"retry_after_seconds": int(retryAfter.Seconds())},
	}
}

// NewAlreadyBannedError is returned when banning an account that is banned.
func NewAlreadyBannedError(userID int64) *AppError {
	return &AppError{
		Err:        ErrAlreadyBanned,
		StatusCode: http.StatusConflict,
		Message:    constants.MsgAlreadyBanned,
		DevInfo:    fmt.Sprintf("user %d is already banned", userID),
	}
}

// NewNotBannedError is returned when unbanning an account without a ban.
func NewNotBannedError(userID int64) *AppError {
	return &AppError{
		Err:        ErrNotBanned,
		StatusCode: http.StatusConflict,
		Message:    constants.MsgNotBanned,
		DevInfo:    fmt.Sprintf("user %d is not banned", userID),
	}
}

// NewSelfReportError is returned when a user reports themselves.
func NewSelfReportError() *AppError {
	return &AppError{
		Err:        ErrSelfReport,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgSelfReport,
		Field:      "reported_user_id",
	}
}

// NewDuplicateRecentError is returned for a repeated report within the suppression window.
func NewDuplicateRecentError() *AppError {
	return &AppError{
		Err:        ErrDuplicateRecent,
		StatusCode: http.StatusConflict,
		Message:    constants.MsgDuplicateReport,
	}
}

// NewInvalidTransitionError is returned when a non-pending report is reviewed.
func NewInvalidTransitionError(current, target string) *AppError {
	return &AppError{
		Err:        ErrInvalidTransition,
		StatusCode: http.StatusConflict,
		Message:    constants.MsgInvalidTransition,
		DevInfo:    fmt.Sprintf("cannot move report from %s to %s", current, target),
		Details:    map[string]any{"current_status": current, "target_status": target},
	}
}

// uniqueConstraintFields maps unique constraints to the field they guard.
var uniqueConstraintFields = map[string]string{
	constants.ConstraintUsersEmail:      "email",
	constants.ConstraintUsersGoogleID:   "google_id",
	constants.ConstraintAdminUsersEmail: "email",
	constants.ConstraintSessionsJWTID:   "jwt_id",
}

// ParseError attempts to parse various types of errors into an AppError
func ParseError(err error) *AppError {
	// If it's already an AppError, return it
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError("Resource", "")
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError("")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrDuplicate):
		return NewDuplicateError("Resource", "", "")
	case errors.Is(err, ErrInvalidCredentials):
		return NewInvalidCredentialsError()
	case errors.Is(err, ErrExpiredToken):
		return NewExpiredTokenError()
	case errors.Is(err, ErrInvalidToken):
		return NewInvalidTokenError()
	case errors.Is(err, ErrSelfReport):
		return NewSelfReportError()
	case errors.Is(err, ErrDuplicateRecent):
		return NewDuplicateRecentError()
	}

	// Check for PostgreSQL-specific errors
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constants.PGErrorDuplicateConstraint:
			field := uniqueConstraintFields[pqErr.Constraint]
			return &AppError{
				Err:        ErrDuplicate,
				StatusCode: http.StatusConflict,
				Message:    constants.MsgResourceAlreadyExists,
				DevInfo:    pqErr.Error(),
				Field:      field,
			}
		case constants.PGErrorForeignKeyConstraint:
			return &AppError{
				Err:        ErrBadRequest,
				StatusCode: http.StatusBadRequest,
				Message:    "This operation violates a foreign key constraint",
				DevInfo:    pqErr.Error(),
			}
		case constants.PGErrorNotNullConstraint:
			field := pqErr.Column
			return &AppError{
				Err:        ErrValidation,
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("The %s field cannot be empty", field),
				DevInfo:    pqErr.Error(),
				Field:      field,
			}
		case constants.PGErrorCheckConstraint:
			return &AppError{
				Err:        ErrValidation,
				StatusCode: http.StatusBadRequest,
				Message:    "The value violates a data constraint",
				DevInfo:    pqErr.Error(),
				Field:      pqErr.Constraint,
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint"):
		return &AppError{
			Err:        ErrDuplicate,
			StatusCode: http.StatusConflict,
			Message:    constants.MsgResourceAlreadyExists,
			DevInfo:    err.Error(),
		}
	case strings.Contains(errMsg, "no rows"):
		return &AppError{
			Err:        ErrNotFound,
			StatusCode: http.StatusNotFound,
			Message:    constants.MsgResourceNotFound,
			DevInfo:    err.Error(),
		}
	}

	return NewInternalServerError(err)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if an error is a duplicate resource error
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyBannedError checks if an error reports a ban on a banned account
func IsAlreadyBannedError(err error) bool {
	return errors.Is(err, ErrAlreadyBanned)
}

// IsNotBannedError checks if an error reports an unban of an account without a ban
func IsNotBannedError(err error) bool {
	return errors.Is(err, ErrNotBanned)
}

// IsPQUniqueViolation reports whether err is a PostgreSQL unique violation on constraint.
// An empty constraint matches any unique violation.
func IsPQUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constants.PGErrorDuplicateConstraint &&
			(constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

// StatusCode returns the HTTP status code for an error
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
