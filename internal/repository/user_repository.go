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

const userColumns = `user_id, email, first_name, last_name, password_hash, salt, provider, google_id,
	confirmed_at, banned_at, banned_reason, banned_until, banned_by, created_at, updated_at`

// UserRepository defines methods for interacting with user accounts.
// Methods taking a *sql.Tx are used by the ban engine so the account row
// lock and the audit entry share one transaction.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]*models.User, int, error)

	// GetForUpdate reads the account and locks its row until tx ends.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - tx: The transaction holding the lock
	//   - id: The account to lock
	//
	// Returns:
	//   - The locked account
	//   - NotFoundError if the account doesn't exist
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error)

	// SetBan writes the four ban fields of the account.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - tx: The transaction that locked the row
	//   - id: The account to ban
	//   - bannedAt: When the ban starts
	//   - reason: Why the account is banned
	//   - bannedBy: The administrator, or the system actor, placing the ban
	//   - until: The end of a temporary ban; nil for a permanent one
	//
	// Returns:
	//   - NotFoundError if the account doesn't exist
	//   - Other errors for database issues
	SetBan(ctx context.Context, tx *sql.Tx, id int64, bannedAt time.Time, reason string, bannedBy int64, until *time.Time) error

	// ClearBan resets the four ban fields of the account.
	ClearBan(ctx context.Context, tx *sql.Tx, id int64) error
}

// PostgresUserRepository is a PostgreSQL implementation of UserRepository
type PostgresUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository.
//
// Parameters:
//   - db: A connection pool for PostgreSQL database access
//
// Returns:
//   - An implementation of the UserRepository interface
func NewUserRepository(db *database.Pool) UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Salt,
		&user.Provider,
		&user.GoogleID,
		&user.ConfirmedAt,
		&user.BannedAt,
		&user.BannedReason,
		&user.BannedUntil,
		&user.BannedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create adds a new user to the database
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (email, first_name, last_name, password_hash, salt, provider, google_id, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING user_id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Salt,
		user.Provider,
		user.GoogleID,
		user.ConfirmedAt,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	utils.LogDBQuery(
		query,
		[]interface{}{user.Email, user.FirstName, user.LastName, "[REDACTED]", "[REDACTED]", user.Provider, user.GoogleID, user.ConfirmedAt, user.CreatedAt, user.UpdatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsPQUniqueViolation(err, constants.ConstraintUsersEmail) {
			return utils.NewDuplicateError("User", "email", user.Email)
		}
		if utils.IsPQUniqueViolation(err, constants.ConstraintUsersGoogleID) {
			return utils.NewDuplicateError("User", "google_id", "[REDACTED]")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64(constants.ColumnUserID, user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("User created")

	return nil
}

// getOne runs a single-row user query and maps a missing row to NotFound.
func (r *PostgresUserRepository) getOne(ctx context.Context, q database.Querier, query string, identifier interface{}, args ...interface{}) (*models.User, error) {
	startTime := time.Now()

	user, err := scanUser(q.QueryRowContext(ctx, query, args...))

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", identifier)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return r.getOne(ctx, r.db, query, id, id)
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, r.db, query, fmt.Sprintf("email=%s", utils.MaskEmail(email)), email)
}

// GetByGoogleID retrieves a user by the subject of their linked Google account
func (r *PostgresUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.getOne(ctx, r.db, query, "google_id", googleID)
}

// GetForUpdate loads the account and locks its row until tx ends.
func (r *PostgresUserRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 FOR UPDATE`
	return r.getOne(ctx, tx, query, id, id)
}

// Exists checks whether a user with the given ID exists
func (r *PostgresUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`, id)
}

// ExistsByEmail checks whether an account already uses the email
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	startTime := time.Now()

	var exists bool
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists)

	utils.LogDBQuery(query, []interface{}{arg}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Update saves profile and identity fields. Ban fields are not touched.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, provider = $4, google_id = $5, confirmed_at = $6, updated_at = $7
		WHERE user_id = $8
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Provider,
		user.GoogleID,
		user.ConfirmedAt,
		user.UpdatedAt,
		user.ID,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{user.Email, user.FirstName, user.LastName, user.Provider, "[REDACTED]", user.ConfirmedAt, user.UpdatedAt, user.ID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsPQUniqueViolation(err, constants.ConstraintUsersEmail) {
			return utils.NewDuplicateError("User", "email", user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", user.ID)
	}

	return nil
}

// SetBan writes the ban fields of an account within tx.
func (r *PostgresUserRepository) SetBan(ctx context.Context, tx *sql.Tx, id int64, bannedAt time.Time, reason string, bannedBy int64, until *time.Time) error {
	startTime := time.Now()

	query := `
		UPDATE users
		SET banned_at = $1, banned_reason = $2, banned_by = $3, banned_until = $4, updated_at = $1
		WHERE user_id = $5
	`

	_, err := tx.ExecContext(ctx, query, bannedAt, reason, bannedBy, until, id)

	utils.LogDBQuery(query, []interface{}{bannedAt, reason, bannedBy, until, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to set ban: %w", err)
	}
	return nil
}

// ClearBan resets every ban field of an account within tx.
func (r *PostgresUserRepository) ClearBan(ctx context.Context, tx *sql.Tx, id int64) error {
	startTime := time.Now()

	query := `
		UPDATE users
		SET banned_at = NULL, banned_reason = NULL, banned_by = NULL, banned_until = NULL, updated_at = $1
		WHERE user_id = $2
	`

	now := time.Now()
	_, err := tx.ExecContext(ctx, query, now, id)

	utils.LogDBQuery(query, []interface{}{now, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to clear ban: %w", err)
	}
	return nil
}

// List returns a page of users matching filter together with the total count.
func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]*models.User, int, error) {
	startTime := time.Now()

	var where whereClause
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where.add("(email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)", pattern, pattern, pattern)
	}
	if filter.Provider != "" {
		where.add("provider = ?", filter.Provider)
	}
	if filter.Banned != nil {
		if *filter.Banned {
			where.add("banned_at IS NOT NULL AND (banned_until IS NULL OR banned_until > ?)", time.Now())
		} else {
			where.add("(banned_at IS NULL OR banned_until <= ?)", time.Now())
		}
	}

	countQuery := `SELECT COUNT(*) FROM users` + where.String()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		utils.LogDBQuery(countQuery, where.args, time.Since(startTime), err)
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	suffix, args := where.page(limit, offset)
	query := `SELECT ` + userColumns + ` FROM users` + where.String() + ` ORDER BY created_at DESC, user_id DESC` + suffix

	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}
