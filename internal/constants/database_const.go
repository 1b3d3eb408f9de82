// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and schema references. Queries and
// migrations reference these instead of string literals.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableUsers is the name of the table storing user accounts and their ban state.
	TableUsers = "users"

	// TableAdminUsers is the name of the table storing administrators and the system actor.
	TableAdminUsers = "admin_users"

	// TableBanLogs is the name of the append-only ban audit table.
	TableBanLogs = "ban_logs"

	// TableReports is the name of the table storing abuse reports.
	TableReports = "reports"

	// TableSessions is the name of the table storing refresh-token sessions.
	TableSessions = "sessions"

	// TableMigrations is the name of the table recording executed migrations.
	TableMigrations = "migrations"
)

// Common Column Names define frequently used database column names.
const (
	// ColumnUserID is the column name for user identifier foreign keys.
	ColumnUserID = "user_id"

	// ColumnAdminID is the primary key column of admin users.
	ColumnAdminID = "admin_id"

	// ColumnReportID is the primary key column of reports.
	ColumnReportID = "report_id"

	// ColumnBanLogID is the primary key column of ban log entries.
	ColumnBanLogID = "ban_log_id"

	// ColumnSessionID is the column name for session identifiers.
	ColumnSessionID = "session_id"

	// ColumnJWTID is the column name for JWT identifiers.
	ColumnJWTID = "jwt_id"

	// ColumnCreatedAt is the column name for creation timestamps.
	ColumnCreatedAt = "created_at"

	// ColumnExpiresAt is the column name for expiration timestamps.
	ColumnExpiresAt = "expires_at"
)

// Database Schema Names define the names of database schemas.
const (
	// SchemaInformation is the name of the PostgreSQL information schema.
	SchemaInformation = "information_schema"
)

// PostgreSQL connection string parameters
const (
	PostgresSSLRequire = "sslmode=require connect_timeout=15"
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)

// Constraint names referenced when mapping unique violations.
const (
	ConstraintUsersEmail      = "uq_users_email"
	ConstraintUsersGoogleID   = "uq_users_google_id"
	ConstraintAdminUsersEmail = "uq_admin_users_email"
	ConstraintSessionsJWTID   = "uq_sessions_jwt_id"
)
