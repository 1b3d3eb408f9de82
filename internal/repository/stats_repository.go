package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// StatsRepository computes the moderation dashboard counters.
type StatsRepository interface {
	Dashboard(ctx context.Context, now, since time.Time) (*models.DashboardStats, error)
}

// PostgresStatsRepository is a PostgreSQL implementation of StatsRepository
type PostgresStatsRepository struct {
	db *database.Pool
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *database.Pool) StatsRepository {
	return &PostgresStatsRepository{db: db}
}

// Dashboard returns current totals and the activity recorded since the
// given time, in a single round trip.
func (r *PostgresStatsRepository) Dashboard(ctx context.Context, now, since time.Time) (*models.DashboardStats, error) {
	startTime := time.Now()

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE banned_at IS NOT NULL AND (banned_until IS NULL OR banned_until > $1)),
			(SELECT COUNT(*) FROM reports WHERE status = 'pending'),
			(SELECT COUNT(*) FROM ban_logs WHERE action IN ('banned', 'auto_banned') AND created_at >= $2),
			(SELECT COUNT(*) FROM ban_logs WHERE action = 'auto_banned' AND created_at >= $2),
			(SELECT COUNT(*) FROM ban_logs WHERE action = 'unbanned' AND created_at >= $2),
			(SELECT COUNT(*) FROM reports WHERE created_at >= $2)
	`

	stats := &models.DashboardStats{}
	err := r.db.QueryRowContext(ctx, query, now, since).Scan(
		&stats.TotalUsers,
		&stats.BannedUsers,
		&stats.PendingReports,
		&stats.BansThisWeek,
		&stats.AutoBansThisWeek,
		&stats.UnbansThisWeek,
		&stats.ReportsThisWeek,
	)

	utils.LogDBQuery(query, []interface{}{now, since}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}
