package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const banLogColumns = `ban_log_id, user_id, admin_user_id, action, reason, banned_until, ip_address, created_at`

// BanLogRepository appends and reads audit entries. Entries are never
// updated or deleted.
type BanLogRepository interface {
	// Create appends an entry.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - q: The pool or the transaction of the account change
	//   - entry: The entry to store; ID and CreatedAt are filled in
	//
	// Returns:
	//   - An error for database issues
	Create(ctx context.Context, q database.Querier, entry *models.BanLog) error
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.BanLog, int, error)
	List(ctx context.Context, filter models.BanLogFilter, offset, limit int) ([]*models.BanLog, int, error)
}

// PostgresBanLogRepository is a PostgreSQL implementation of BanLogRepository
type PostgresBanLogRepository struct {
	db *database.Pool
}

// NewBanLogRepository creates a new BanLogRepository.
//
// Parameters:
//   - db: A connection pool for PostgreSQL database access
//
// Returns:
//   - An implementation of the BanLogRepository interface
func NewBanLogRepository(db *database.Pool) BanLogRepository {
	return &PostgresBanLogRepository{db: db}
}

// Create appends entry using q, which may be a transaction.
func (r *PostgresBanLogRepository) Create(ctx context.Context, q database.Querier, entry *models.BanLog) error {
	startTime := time.Now()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO ban_logs (user_id, admin_user_id, action, reason, banned_until, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ban_log_id
	`
	args := []interface{}{entry.UserID, entry.AdminUserID, entry.Action, entry.Reason, entry.BannedUntil, entry.IPAddress, entry.CreatedAt}

	err := q.QueryRowContext(ctx, query, args...).Scan(&entry.ID)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to create ban log: %w", err)
	}
	return nil
}

// ListByUser returns the audit history of one account, newest first.
func (r *PostgresBanLogRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.BanLog, int, error) {
	return r.List(ctx, models.BanLogFilter{UserID: userID}, offset, limit)
}

// List returns a page of audit entries matching filter, newest first.
func (r *PostgresBanLogRepository) List(ctx context.Context, filter models.BanLogFilter, offset, limit int) ([]*models.BanLog, int, error) {
	startTime := time.Now()

	var where whereClause
	if filter.Action != "" {
		where.add("action = ?", filter.Action)
	}
	if filter.UserID > 0 {
		where.add("user_id = ?", filter.UserID)
	}
	if filter.AdminID > 0 {
		where.add("admin_user_id = ?", filter.AdminID)
	}

	countQuery := `SELECT COUNT(*) FROM ban_logs` + where.String()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		utils.LogDBQuery(countQuery, where.args, time.Since(startTime), err)
		return nil, 0, fmt.Errorf("failed to count ban logs: %w", err)
	}

	suffix, args := where.page(limit, offset)
	query := `SELECT ` + banLogColumns + ` FROM ban_logs` + where.String() + ` ORDER BY created_at DESC, ban_log_id DESC` + suffix

	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ban logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	entries := []*models.BanLog{}
	for rows.Next() {
		entry := &models.BanLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.AdminUserID,
			&entry.Action,
			&entry.Reason,
			&entry.BannedUntil,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ban log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating ban log rows: %w", err)
	}

	return entries, total, nil
}
