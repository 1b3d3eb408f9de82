package migrations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/migrations"
)

const tableExistsQuery = "SELECT EXISTS\\(SELECT 1\\s+FROM information_schema.tables"

func newMigrator(t *testing.T) (*migrations.Migrator, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return migrations.NewMigrator(&database.Pool{DB: db}), mock
}

func expectBanColumns(mock sqlmock.Sqlmock) {
	for i := 0; i < 4; i++ {
		mock.ExpectExec("ALTER TABLE users ADD COLUMN IF NOT EXISTS banned_").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestGetMigrations(t *testing.T) {
	list := migrations.GetMigrations()

	var tables []string
	for _, migration := range list {
		assert.NotEmpty(t, migration.Name)
		assert.NotEmpty(t, migration.Description)
		assert.NotNil(t, migration.RunSQL)
		tables = append(tables, migration.TableName)
	}

	// referenced tables come first
	assert.Equal(t, []string{"admin_users", "users", "ban_logs", "reports", "sessions"}, tables)
}

func TestRunMigrations(t *testing.T) {
	count := len(migrations.GetMigrations())

	tests := []struct {
		name        string
		setup       func(sqlmock.Sqlmock)
		errContains string
	}{
		{
			name: "Create migrations table fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnError(errors.New("permission denied"))
			},
			errContains: "failed to create migrations table",
		},
		{
			name: "Get executed migrations fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnError(errors.New("boom"))
			},
			errContains: "failed to get executed migrations",
		},
		{
			name: "Table exists check fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery(tableExistsQuery).
					WillReturnError(errors.New("boom"))
			},
			errContains: "failed to check if table admin_users exists",
		},
		{
			name: "Fresh database runs every migration",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))

				statements := map[int]int{0: 1, 1: 2, 2: 4, 3: 4, 4: 3}
				for i := 0; i < count; i++ {
					mock.ExpectQuery(tableExistsQuery).
						WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
					mock.ExpectBegin()
					for j := 0; j < statements[i]; j++ {
						mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
					}
					mock.ExpectExec("INSERT INTO migrations").
						WillReturnResult(sqlmock.NewResult(1, 1))
					mock.ExpectCommit()
				}
				expectBanColumns(mock)
			},
		},
		{
			name: "Existing tables are recorded without running SQL",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("create_admin_users_table"))

				for i := 0; i < count; i++ {
					mock.ExpectQuery(tableExistsQuery).
						WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
					if i > 0 {
						mock.ExpectExec("INSERT INTO migrations").
							WillReturnResult(sqlmock.NewResult(1, 1))
					}
				}
				expectBanColumns(mock)
			},
		},
		{
			name: "Migration failure is rolled back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery(tableExistsQuery).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS admin_users").
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			errContains: "migration create_admin_users_table failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, mock := newMigrator(t)
			tt.setup(mock)

			err := migrator.RunMigrations(context.Background())

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
