// Package repository provides data access for the API's PostgreSQL tables.
// Every repository logs its queries through utils.LogDBQuery and maps
// missing rows and constraint violations to *utils.AppError values.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// SessionRepository defines methods for refresh-token sessions.
// A session lives as long as its refresh token; rotating or revoking the
// token removes the row.
type SessionRepository interface {
	// Create adds a new session to the database.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - session: The session to store, with required fields populated
	//
	// Returns:
	//   - DuplicateError if a session with the same ID or JWT ID already exists
	//   - Other errors for database issues
	//   - nil on successful creation
	//
	// If the session ID is empty, a new UUID will be generated automatically.
	Create(ctx context.Context, session *models.Session) error

	// GetByJWTID retrieves a session by the JWT ID of its refresh token.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - jwtID: The unique identifier of the refresh token
	//
	// Returns:
	//   - The session if found
	//   - NotFoundError if no session exists for the JWT ID
	//   - Other errors for database issues
	GetByJWTID(ctx context.Context, jwtID string) (*models.Session, error)

	// DeleteByJWTID removes the session of one refresh token.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - jwtID: The unique identifier of the refresh token
	//
	// Returns:
	//   - NotFoundError if no session exists for the JWT ID
	//   - Other errors for database issues
	DeleteByJWTID(ctx context.Context, jwtID string) error

	// DeleteByUserID removes every session of a user, logging them out on
	// all devices.
	//
	// Parameters:
	//   - ctx: Context for transaction and cancellation control
	//   - userID: The owner of the sessions
	//
	// Returns:
	//   - An error for database issues; a user without sessions is not an error
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired removes sessions whose refresh token has expired.
	//
	// Returns:
	//   - The number of sessions removed
	//   - An error for database issues
	DeleteExpired(ctx context.Context) (int64, error)

	// IsValidSession reports whether an unexpired session exists for jwtID.
	IsValidSession(ctx context.Context, jwtID string) (bool, error)
}

// PostgresSessionRepository is a PostgreSQL implementation of SessionRepository.
type PostgresSessionRepository struct {
	db *database.Pool
}

// NewSessionRepository creates a new SessionRepository.
//
// Parameters:
//   - db: A connection pool for PostgreSQL database access
//
// Returns:
//   - An implementation of the SessionRepository interface
func NewSessionRepository(db *database.Pool) SessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

// Create adds a new session to the database. An empty ID is replaced by a
// new UUID.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	startTime := time.Now()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	query := `
		INSERT INTO sessions (session_id, user_id, jwt_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	args := []interface{}{session.ID, session.UserID, session.JWTID, session.ExpiresAt, session.CreatedAt}

	_, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if utils.IsPQUniqueViolation(err, constants.ConstraintSessionsJWTID) {
			return utils.NewDuplicateError("Session", constants.ColumnJWTID, session.JWTID)
		}
		if utils.IsPQUniqueViolation(err, "sessions_pkey") {
			return utils.NewDuplicateError("Session", "id", session.ID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	log.Debug().
		Str(constants.ColumnSessionID, session.ID).
		Int64(constants.ColumnUserID, session.UserID).
		Time(constants.ColumnExpiresAt, session.ExpiresAt).
		Msg("Session created")

	return nil
}

// GetByJWTID retrieves the session bound to a refresh token.
func (r *PostgresSessionRepository) GetByJWTID(ctx context.Context, jwtID string) (*models.Session, error) {
	startTime := time.Now()

	query := `
		SELECT session_id, user_id, jwt_id, expires_at, created_at
		FROM sessions
		WHERE jwt_id = $1
	`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, jwtID).Scan(
		&session.ID,
		&session.UserID,
		&session.JWTID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	utils.LogDBQuery(query, []interface{}{jwtID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Session", jwtID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteByJWTID removes the session bound to a refresh token. Deleting a
// session that no longer exists is not an error.
func (r *PostgresSessionRepository) DeleteByJWTID(ctx context.Context, jwtID string) error {
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE jwt_id = $1`
	_, err := r.db.ExecContext(ctx, query, jwtID)

	utils.LogDBQuery(query, []interface{}{jwtID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions of a user.
func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	if count, err := result.RowsAffected(); err == nil && count > 0 {
		log.Info().
			Int64(constants.ColumnUserID, userID).
			Int64("count", count).
			Msg("User sessions deleted")
	}
	return nil
}

// DeleteExpired removes every session past its expiry and returns how many
// were deleted.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE expires_at < $1`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, now)

	utils.LogDBQuery(query, []interface{}{now}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info().
		Int64("count", count).
		Msg("Expired sessions deleted")

	return count, nil
}

// IsValidSession checks if a session with the given JWT ID exists and is not expired.
func (r *PostgresSessionRepository) IsValidSession(ctx context.Context, jwtID string) (bool, error) {
	startTime := time.Now()

	query := `
		SELECT EXISTS(
			SELECT 1 FROM sessions
			WHERE jwt_id = $1 AND expires_at > $2
		)
	`

	now := time.Now()
	var valid bool
	err := r.db.QueryRowContext(ctx, query, jwtID, now).Scan(&valid)

	utils.LogDBQuery(query, []interface{}{jwtID, now}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check session validity: %w", err)
	}

	return valid, nil
}
