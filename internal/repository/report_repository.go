package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const reportColumns = `report_id, reported_user_id, reporter_id, reason, description, status,
	reviewed_by, admin_notes, ip_address, created_at, updated_at`

// ReportRepository defines methods for abuse reports.
type ReportRepository interface {
	// CreateUnlessDuplicate stores a new pending report.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - report: The report to store; ID, status and timestamps are filled in
	//   - window: How far back an identical report blocks this one
	//
	// Returns:
	//   - DuplicateRecentError if the reporter filed the same reason against
	//     the same user within window
	//   - Other errors for database issues
	//   - nil on successful creation
	CreateUnlessDuplicate(ctx context.Context, report *models.Report, window time.Duration) error

	// GetByID retrieves a report by its identifier.
	//
	// Returns:
	//   - The report if found
	//   - NotFoundError if the report doesn't exist
	GetByID(ctx context.Context, id int64) (*models.Report, error)

	// Transition moves a pending report to status.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - id: The report to update
	//   - status: The new status
	//   - adminID: The reviewing administrator
	//   - notes: Optional review notes
	//
	// Returns:
	//   - The updated report
	//   - InvalidTransitionError if the report is no longer pending
	//   - NotFoundError if the report doesn't exist
	Transition(ctx context.Context, id int64, status string, adminID int64, notes *string) (*models.Report, error)

	// CountAgainst counts reports filed against userID after since,
	// optionally limited to one reason.
	CountAgainst(ctx context.Context, userID int64, since time.Time, reason *string) (int, error)

	// List returns a page of reports matching filter, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter models.ReportFilter, offset, limit int) ([]*models.Report, int, error)

	// ListByReporter returns a page of the reports a user has filed.
	ListByReporter(ctx context.Context, reporterID int64, offset, limit int) ([]*models.Report, int, error)
}

// PostgresReportRepository is a PostgreSQL implementation of ReportRepository
type PostgresReportRepository struct {
	db *database.Pool
}

// NewReportRepository creates a new ReportRepository.
//
// Parameters:
//   - db: A connection pool for PostgreSQL database access
//
// Returns:
//   - An implementation of the ReportRepository interface
func NewReportRepository(db *database.Pool) ReportRepository {
	return &PostgresReportRepository{db: db}
}

func scanReport(row rowScanner) (*models.Report, error) {
	report := &models.Report{}
	err := row.Scan(
		&report.ID,
		&report.ReportedUserID,
		&report.ReporterID,
		&report.Reason,
		&report.Description,
		&report.Status,
		&report.ReviewedBy,
		&report.AdminNotes,
		&report.IPAddress,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ReportLockKey derives the advisory lock key for a (reporter, reported,
// reason) triple.
func ReportLockKey(reporterID, reportedUserID int64, reason string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "report:%d:%d:%s", reporterID, reportedUserID, reason)
	return int64(h.Sum64())
}

// CreateUnlessDuplicate inserts report unless the same reporter filed the
// same reason against the same user within window. Concurrent submissions of
// one triple are serialized by a transaction-scoped advisory lock, so exactly
// one of them is stored.
func (r *PostgresReportRepository) CreateUnlessDuplicate(ctx context.Context, report *models.Report, window time.Duration) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		startTime := time.Now()

		lockQuery := `SELECT pg_advisory_xact_lock($1)`
		key := ReportLockKey(report.ReporterID, report.ReportedUserID, report.Reason)
		_, err := tx.ExecContext(ctx, lockQuery, key)
		utils.LogDBQuery(lockQuery, []interface{}{key}, time.Since(startTime), err)
		if err != nil {
			return fmt.Errorf("failed to acquire report lock: %w", err)
		}

		now := time.Now()
		dupQuery := `
			SELECT EXISTS(
				SELECT 1 FROM reports
				WHERE reporter_id = $1 AND reported_user_id = $2 AND reason = $3 AND created_at > $4
			)
		`
		dupArgs := []interface{}{report.ReporterID, report.ReportedUserID, report.Reason, now.Add(-window)}
		var duplicate bool
		err = tx.QueryRowContext(ctx, dupQuery, dupArgs...).Scan(&duplicate)
		utils.LogDBQuery(dupQuery, dupArgs, time.Since(startTime), err)
		if err != nil {
			return fmt.Errorf("failed to check duplicate report: %w", err)
		}
		if duplicate {
			return utils.NewDuplicateRecentError()
		}

		report.Status = constants.ReportStatusPending
		report.CreatedAt = now
		report.UpdatedAt = now

		insertQuery := `
			INSERT INTO reports (reported_user_id, reporter_id, reason, description, status, ip_address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING report_id
		`
		insertArgs := []interface{}{
			report.ReportedUserID, report.ReporterID, report.Reason, report.Description,
			report.Status, report.IPAddress, report.CreatedAt, report.UpdatedAt,
		}
		err = tx.QueryRowContext(ctx, insertQuery, insertArgs...).Scan(&report.ID)
		utils.LogDBQuery(insertQuery, insertArgs, time.Since(startTime), err)
		if err != nil {
			if appErr := utils.ParseError(err); appErr != nil && appErr.StatusCode < 500 {
				return appErr
			}
			return fmt.Errorf("failed to create report: %w", err)
		}

		log.Info().
			Int64(constants.ColumnReportID, report.ID).
			Int64("reported_user_id", report.ReportedUserID).
			Str("reason", report.Reason).
			Msg("Report created")

		return nil
	})
}

// GetByID retrieves a report by ID
func (r *PostgresReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	startTime := time.Now()

	query := `SELECT ` + reportColumns + ` FROM reports WHERE report_id = $1`
	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Report", id)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// Transition moves a pending report to status. The update is conditional on
// the report still being pending, so of two concurrent reviews only one wins.
func (r *PostgresReportRepository) Transition(ctx context.Context, id int64, status string, adminID int64, notes *string) (*models.Report, error) {
	startTime := time.Now()

	query := `
		UPDATE reports
		SET status = $1, reviewed_by = $2, admin_notes = $3, updated_at = $4
		WHERE report_id = $5 AND status = 'pending'
		RETURNING ` + reportColumns

	now := time.Now()
	args := []interface{}{status, adminID, notes, now, id}
	report, err := scanReport(r.db.QueryRowContext(ctx, query, args...))

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err == nil {
		return report, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to transition report: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, utils.NewInvalidTransitionError(current.Status, status)
}

// CountAgainst counts reports filed against userID since the given time,
// optionally restricted to one reason.
func (r *PostgresReportRepository) CountAgainst(ctx context.Context, userID int64, since time.Time, reason *string) (int, error) {
	startTime := time.Now()

	var where whereClause
	where.add("reported_user_id = ?", userID)
	where.add("created_at >= ?", since)
	if reason != nil {
		where.add("reason = ?", *reason)
	}

	query := `SELECT COUNT(*) FROM reports` + where.String()
	var count int
	err := r.db.QueryRowContext(ctx, query, where.args...).Scan(&count)

	utils.LogDBQuery(query, where.args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// ListByReporter returns the reports filed by one user, newest first.
func (r *PostgresReportRepository) ListByReporter(ctx context.Context, reporterID int64, offset, limit int) ([]*models.Report, int, error) {
	var where whereClause
	where.add("reporter_id = ?", reporterID)
	return r.list(ctx, where, offset, limit)
}

// List returns a page of reports matching filter, newest first.
func (r *PostgresReportRepository) List(ctx context.Context, filter models.ReportFilter, offset, limit int) ([]*models.Report, int, error) {
	var where whereClause
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.Reason != "" {
		where.add("reason = ?", filter.Reason)
	}
	if filter.ReportedUserID > 0 {
		where.add("reported_user_id = ?", filter.ReportedUserID)
	}
	return r.list(ctx, where, offset, limit)
}

func (r *PostgresReportRepository) list(ctx context.Context, where whereClause, offset, limit int) ([]*models.Report, int, error) {
	startTime := time.Now()

	countQuery := `SELECT COUNT(*) FROM reports` + where.String()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		utils.LogDBQuery(countQuery, where.args, time.Since(startTime), err)
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	suffix, args := where.page(limit, offset)
	query := `SELECT ` + reportColumns + ` FROM reports` + where.String() + ` ORDER BY created_at DESC, report_id DESC` + suffix

	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	reports := []*models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, total, nil
}
