package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

func newReport() *models.Report {
	ip := "10.0.0.1"
	return &models.Report{
		ReporterID:     1,
		ReportedUserID: 2,
		Reason:         "spam",
		Description:    "sends links all day",
		IPAddress:      &ip,
	}
}

// cutoffArg matches a time argument equal to now minus window, within a second.
type cutoffArg struct {
	window time.Duration
}

func (a cutoffArg) Match(v driver.Value) bool {
	at, ok := v.(time.Time)
	if !ok {
		return false
	}
	diff := time.Now().Add(-a.window).Sub(at)
	return diff >= 0 && diff < time.Second
}

func TestReportLockKey(t *testing.T) {
	a := repository.ReportLockKey(1, 2, "spam")

	assert.Equal(t, a, repository.ReportLockKey(1, 2, "spam"))
	assert.NotEqual(t, a, repository.ReportLockKey(2, 1, "spam"))
	assert.NotEqual(t, a, repository.ReportLockKey(1, 2, "threats"))
}

func TestReportRepository_CreateUnlessDuplicate(t *testing.T) {
	key := repository.ReportLockKey(1, 2, "spam")

	t.Run("Inserts when no recent duplicate", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock\\(\\$1\\)").
			WithArgs(key).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS\\(\\s*SELECT 1 FROM reports(.+)created_at > \\$4").
			WithArgs(int64(1), int64(2), "spam", cutoffArg{window: 24 * time.Hour}).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO reports").
			WithArgs(int64(2), int64(1), "spam", "sends links all day", "pending", "10.0.0.1", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"report_id"}).AddRow(11))
		mock.ExpectCommit()

		report := newReport()
		err := repo.CreateUnlessDuplicate(context.Background(), report, 24*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(11), report.ID)
		assert.Equal(t, "pending", report.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects a duplicate within the window", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1), int64(2), "spam", cutoffArg{window: 24 * time.Hour}).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.CreateUnlessDuplicate(context.Background(), newReport(), 24*time.Hour)

		assert.ErrorIs(t, err, utils.ErrDuplicateRecent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Uses the given window as cutoff", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1), int64(2), "spam", cutoffArg{window: time.Hour}).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO reports").
			WillReturnRows(sqlmock.NewRows([]string{"report_id"}).AddRow(12))
		mock.ExpectCommit()

		err := repo.CreateUnlessDuplicate(context.Background(), newReport(), time.Hour)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock failure", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnError(errors.New("canceled"))
		mock.ExpectRollback()

		err := repo.CreateUnlessDuplicate(context.Background(), newReport(), 24*time.Hour)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to acquire report lock")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReportRepository_Transition(t *testing.T) {
	notes := "confirmed spam"

	t.Run("Pending report transitions", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectQuery("UPDATE reports\\s+SET status = \\$1(.+)WHERE report_id = \\$5 AND status = 'pending'").
			WithArgs("resolved", int64(9), &notes, sqlmock.AnyArg(), int64(4)).
			WillReturnRows(reportRow(4, "resolved"))

		report, err := repo.Transition(context.Background(), 4, "resolved", 9, &notes)

		require.NoError(t, err)
		assert.Equal(t, "resolved", report.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already reviewed report is an invalid transition", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectQuery("UPDATE reports").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE report_id = \\$1").
			WithArgs(int64(4)).
			WillReturnRows(reportRow(4, "dismissed"))

		_, err := repo.Transition(context.Background(), 4, "resolved", 9, nil)

		assert.ErrorIs(t, err, utils.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing report is not found", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectQuery("UPDATE reports").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT (.+) FROM reports").WillReturnError(sql.ErrNoRows)

		_, err := repo.Transition(context.Background(), 404, "resolved", 9, nil)

		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestReportRepository_CountAgainst(t *testing.T) {
	since := time.Now().Add(-48 * time.Hour)
	spam := "spam"

	t.Run("Any reason", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports WHERE reported_user_id = \\$1 AND created_at >= \\$2$").
			WithArgs(int64(2), since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountAgainst(context.Background(), 2, since, nil)

		require.NoError(t, err)
		assert.Equal(t, 5, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Single reason", func(t *testing.T) {
		pool, mock := setupDBMock(t)
		repo := repository.NewReportRepository(pool)

		mock.ExpectQuery("AND reason = \\$3").
			WithArgs(int64(2), since, "spam").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountAgainst(context.Background(), 2, since, &spam)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestReportRepository_List(t *testing.T) {
	pool, mock := setupDBMock(t)
	repo := repository.NewReportRepository(pool)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports WHERE status = \\$1 AND reason = \\$2").
		WithArgs("pending", "spam").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("ORDER BY created_at DESC, report_id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("pending", "spam", 10, 10).
		WillReturnRows(reportRow(8, "pending"))

	reports, total, err := repo.List(context.Background(), models.ReportFilter{Status: "pending", Reason: "spam"}, 10, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, reports, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_ListByReporter(t *testing.T) {
	pool, mock := setupDBMock(t)
	repo := repository.NewReportRepository(pool)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reports WHERE reporter_id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM reports WHERE reporter_id = \\$1 ORDER BY").
		WithArgs(int64(1), 20, 0).
		WillReturnRows(sqlmock.NewRows(reportCols))

	reports, total, err := repo.ListByReporter(context.Background(), 1, 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}
