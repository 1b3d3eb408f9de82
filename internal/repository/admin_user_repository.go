package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const adminUserColumns = `admin_id, email, password_hash, salt, active, created_at, updated_at`

// AdminUserRepository defines methods for administrators and the system actor.
type AdminUserRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByID(ctx context.Context, id int64) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpsertSystemActor(ctx context.Context, email string) (int64, error)
}

// PostgresAdminUserRepository is a PostgreSQL implementation of AdminUserRepository
type PostgresAdminUserRepository struct {
	db *database.Pool
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(db *database.Pool) AdminUserRepository {
	return &PostgresAdminUserRepository{db: db}
}

// Create adds a new administrator
func (r *PostgresAdminUserRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	startTime := time.Now()

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	query := `
		INSERT INTO admin_users (email, password_hash, salt, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING admin_id
	`

	err := r.db.QueryRowContext(ctx, query,
		admin.Email, admin.PasswordHash, admin.Salt, admin.Active, admin.CreatedAt, admin.UpdatedAt,
	).Scan(&admin.ID)

	utils.LogDBQuery(
		query,
		[]interface{}{admin.Email, "[REDACTED]", "[REDACTED]", admin.Active, admin.CreatedAt, admin.UpdatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsPQUniqueViolation(err, constants.ConstraintAdminUsersEmail) {
			return utils.NewDuplicateError("AdminUser", "email", admin.Email)
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().Int64(constants.ColumnAdminID, admin.ID).Msg("Admin user created")
	return nil
}

func (r *PostgresAdminUserRepository) getOne(ctx context.Context, query string, identifier interface{}, arg interface{}) (*models.AdminUser, error) {
	startTime := time.Now()

	admin := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Salt,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)

	utils.LogDBQuery(query, []interface{}{arg}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("AdminUser", identifier)
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return admin, nil
}

// GetByID retrieves an administrator by ID
func (r *PostgresAdminUserRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	return r.getOne(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE admin_id = $1`, id, id)
}

// GetByEmail retrieves an administrator by email
func (r *PostgresAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return r.getOne(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE LOWER(email) = LOWER($1)`,
		fmt.Sprintf("email=%s", utils.MaskEmail(email)), email)
}

// UpsertSystemActor returns the id of the inactive, credential-less admin
// used as the actor of automatic moderation, creating it on first use.
// The no-op update makes RETURNING yield the id when the row already exists.
func (r *PostgresAdminUserRepository) UpsertSystemActor(ctx context.Context, email string) (int64, error) {
	startTime := time.Now()

	query := `
		INSERT INTO admin_users (email, active)
		VALUES ($1, FALSE)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING admin_id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, email).Scan(&id)

	utils.LogDBQuery(query, []interface{}{email}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert system actor: %w", err)
	}
	return id, nil
}
