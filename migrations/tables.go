package migrations

import (
	"context"
	"database/sql"
)

// execAll runs each statement in order within tx.
func execAll(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// createAdminUsersTable creates the admin_users table. The system actor used
// for automatic moderation lives here too, with active = FALSE.
func createAdminUsersTable() Migration {
	return Migration{
		Name:        "create_admin_users_table",
		Description: "Creates the admin_users table",
		TableName:   "admin_users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, `
				CREATE TABLE IF NOT EXISTS admin_users (
					admin_id BIGSERIAL PRIMARY KEY,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255),
					salt VARCHAR(255),
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_admin_users_email UNIQUE (email)
				)
			`)
		},
	}
}

// createUsersTable creates the users table
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, `
				CREATE TABLE IF NOT EXISTS users (
					user_id BIGSERIAL PRIMARY KEY,
					email VARCHAR(255) NOT NULL,
					first_name VARCHAR(100) NOT NULL,
					last_name VARCHAR(100) NOT NULL,
					password_hash VARCHAR(255),
					salt VARCHAR(255),
					provider VARCHAR(20),
					google_id VARCHAR(255),
					confirmed_at TIMESTAMPTZ,
					banned_at TIMESTAMPTZ,
					banned_reason TEXT,
					banned_until TIMESTAMPTZ,
					banned_by BIGINT REFERENCES admin_users(admin_id) ON DELETE SET NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_users_email UNIQUE (email),
					CONSTRAINT uq_users_google_id UNIQUE (google_id),
					CONSTRAINT chk_users_ban_pair CHECK ((banned_at IS NULL) = (banned_reason IS NULL))
				)`,
				`CREATE INDEX IF NOT EXISTS idx_users_banned_at ON users(banned_at) WHERE banned_at IS NOT NULL`,
			)
		},
	}
}

// createBanLogsTable creates the append-only ban_logs audit table
func createBanLogsTable() Migration {
	return Migration{
		Name:        "create_ban_logs_table",
		Description: "Creates the ban_logs table",
		TableName:   "ban_logs",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, `
				CREATE TABLE IF NOT EXISTS ban_logs (
					ban_log_id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
					admin_user_id BIGINT NOT NULL REFERENCES admin_users(admin_id),
					action VARCHAR(20) NOT NULL,
					reason TEXT NOT NULL,
					banned_until TIMESTAMPTZ,
					ip_address VARCHAR(45),
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT chk_ban_logs_action CHECK (action IN ('banned', 'unbanned', 'auto_banned')),
					CONSTRAINT chk_ban_logs_reason CHECK (char_length(reason) BETWEEN 3 AND 1000)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_ban_logs_user_created ON ban_logs(user_id, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_ban_logs_admin ON ban_logs(admin_user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_ban_logs_action_created ON ban_logs(action, created_at)`,
			)
		},
	}
}

// createReportsTable creates the reports table
func createReportsTable() Migration {
	return Migration{
		Name:        "create_reports_table",
		Description: "Creates the reports table",
		TableName:   "reports",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, `
				CREATE TABLE IF NOT EXISTS reports (
					report_id BIGSERIAL PRIMARY KEY,
					reported_user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
					reporter_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
					reason VARCHAR(30) NOT NULL,
					description TEXT NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					reviewed_by BIGINT REFERENCES admin_users(admin_id) ON DELETE SET NULL,
					admin_notes TEXT,
					ip_address VARCHAR(45),
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT chk_reports_not_self CHECK (reporter_id <> reported_user_id),
					CONSTRAINT chk_reports_reason CHECK (reason IN ('spam', 'harassment', 'inappropriate_content', 'threats', 'fake_profile', 'other')),
					CONSTRAINT chk_reports_status CHECK (status IN ('pending', 'reviewed', 'resolved', 'dismissed')),
					CONSTRAINT chk_reports_description CHECK (char_length(description) BETWEEN 10 AND 1000)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_reports_reported_created ON reports(reported_user_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_reports_triple_created ON reports(reporter_id, reported_user_id, reason, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status)`,
			)
		},
	}
}

// createSessionsTable creates the sessions table holding refresh-token sessions
func createSessionsTable() Migration {
	return Migration{
		Name:        "create_sessions_table",
		Description: "Creates the sessions table",
		TableName:   "sessions",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, `
				CREATE TABLE IF NOT EXISTS sessions (
					session_id VARCHAR(255) PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
					jwt_id VARCHAR(255) NOT NULL,
					expires_at TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_sessions_jwt_id UNIQUE (jwt_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
			)
		},
	}
}
