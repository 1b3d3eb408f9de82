// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling, categorization,
// and messaging. User-facing error messages are informative without revealing
// implementation details.
package constants

// Error Types define the categories of errors that can occur in the application.
const (
	ErrorNotFound            = "resource not found"
	ErrorUnauthorized        = "unauthorized access"
	ErrorForbidden           = "forbidden access"
	ErrorBadRequest          = "invalid request"
	ErrorInternalServer      = "internal server error"
	ErrorValidation          = "validation error"
	ErrorDuplicate           = "duplicate resource"
	ErrorInvalidCredentials  = "invalid credentials"
	ErrorExpiredToken        = "expired token"
	ErrorInvalidToken        = "invalid token"
	ErrorAccountSuspended    = "account suspended"
	ErrorAccountNotConfirmed = "account not confirmed"
	ErrorAccountLocked       = "account locked"
	ErrorAlreadyBanned       = "account already banned"
	ErrorNotBanned           = "account not banned"
	ErrorSelfReport          = "self report"
	ErrorDuplicateReport     = "duplicate recent report"
	ErrorInvalidTransition   = "invalid report transition"
)

// User-Facing Error Messages define standardized messages that can be safely presented to users.
const (
	// MsgAuthRequired indicates that the user must authenticate to access the resource.
	MsgAuthRequired = "Authentication required"

	// MsgInvalidPassword indicates that login credentials are incorrect.
	MsgInvalidPassword = "Invalid email or password"

	// MsgAccessDenied indicates that the user lacks permission for the requested action.
	MsgAccessDenied = "You don't have permission to access this resource"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "An internal server error occurred"

	// MsgTokenExpired indicates that the user's authentication token has expired.
	MsgTokenExpired = "Authentication token has expired"

	// MsgInvalidToken indicates that the provided token is invalid.
	MsgInvalidToken = "Invalid token"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgResourceNotFound indicates that the requested resource does not exist.
	MsgResourceNotFound = "The requested resource could not be found"

	// MsgResourceAlreadyExists indicates a duplicate resource conflict.
	MsgResourceAlreadyExists = "A resource with the same unique identifier already exists"

	// MsgMethodNotAllowed indicates that the HTTP method is not supported for the endpoint.
	MsgMethodNotAllowed = "This method is not allowed for this resource"

	// MsgLogoutSuccess confirms successful logout.
	MsgLogoutSuccess = "Successfully logged out"

	// MsgLogoutAllSuccess confirms successful logout from all sessions.
	MsgLogoutAllSuccess = "Successfully logged out of all sessions"

	// MsgAccountSuspended is shown to users whose account is banned.
	MsgAccountSuspended = "Your account has been suspended"

	// MsgAccountNotConfirmed is shown to users who have not confirmed their account.
	MsgAccountNotConfirmed = "Your account has not been confirmed"

	// MsgAccountLocked is shown after too many failed login attempts.
	MsgAccountLocked = "Too many failed attempts. Please try again later"

	// MsgAlreadyBanned is returned when banning a banned account.
	MsgAlreadyBanned = "The account is already banned"

	// MsgNotBanned is returned when unbanning an account that is not banned.
	MsgNotBanned = "The account is not banned"

	// MsgSelfReport is returned when a user reports their own account.
	MsgSelfReport = "You cannot report yourself"

	// MsgDuplicateReport is returned for a repeated report within the suppression window.
	MsgDuplicateReport = "You have already reported this user for this reason in the last 24 hours"

	// MsgInvalidTransition is returned when a report is not pending.
	MsgInvalidTransition = "Only pending reports can be reviewed"

	// MsgUserBanned confirms a manual ban.
	MsgUserBanned = "User banned"

	// MsgUserUnbanned confirms a manual unban.
	MsgUserUnbanned = "User unbanned"

	// MsgReportSubmitted confirms a report submission.
	MsgReportSubmitted = "Report submitted"
)

// Database Error Types define constants for recognizing PostgreSQL errors.
const (
	// PGErrorDuplicateConstraint is the PostgreSQL error code for unique constraint violations.
	PGErrorDuplicateConstraint = "23505"

	// PGErrorForeignKeyConstraint is the PostgreSQL error code for foreign key violations.
	PGErrorForeignKeyConstraint = "23503"

	// PGErrorNotNullConstraint is the PostgreSQL error code for not-null constraint violations.
	PGErrorNotNullConstraint = "23502"

	// PGErrorCheckConstraint is the PostgreSQL error code for check constraint violations.
	PGErrorCheckConstraint = "23514"
)

// Logger Constants define values used for structured logging.
const (
	LogCategoryUser       = "user"
	LogCategoryAuth       = "auth"
	LogCategoryModeration = "moderation"

	LogEventLogin              = "login"
	LogEventRegister           = "register"
	LogEventGoogleLogin        = "google_login"
	LogEventUserUpdate         = "user_update"
	LogEventBan                = "ban"
	LogEventUnban              = "unban"
	LogEventAutoBan            = "auto_ban"
	LogEventLazyUnban          = "lazy_unban"
	LogEventReportSubmitted    = "report_submitted"
	LogEventReportTransitioned = "report_transitioned"
	LogEventAuditWriteFailed   = "audit_write_failed"
	LogEventNotificationFailed = "notification_failed"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
