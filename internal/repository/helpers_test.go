package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/database"
)

// setupDBMock creates a mock-backed pool closed at the end of the test
func setupDBMock(t *testing.T) (*database.Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.Pool{DB: db}, mock
}

var userCols = []string{
	"user_id", "email", "first_name", "last_name", "password_hash", "salt", "provider", "google_id",
	"confirmed_at", "banned_at", "banned_reason", "banned_until", "banned_by", "created_at", "updated_at",
}

// userRow builds a users row. bannedAt/reason/until may be nil.
func userRow(id int64, email string, bannedAt, reason, until interface{}) *sqlmock.Rows {
	now := time.Now()
	var bannedBy interface{}
	if bannedAt != nil {
		bannedBy = int64(1)
	}
	return sqlmock.NewRows(userCols).AddRow(
		id, email, "Ana", "Lopez", "hash", "salt", nil, nil,
		now, bannedAt, reason, until, bannedBy, now, now,
	)
}

var reportCols = []string{
	"report_id", "reported_user_id", "reporter_id", "reason", "description", "status",
	"reviewed_by", "admin_notes", "ip_address", "created_at", "updated_at",
}

func reportRow(id int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reportCols).AddRow(
		id, int64(2), int64(1), "spam", "sends links all day", status,
		nil, nil, "10.0.0.1", now, now,
	)
}
