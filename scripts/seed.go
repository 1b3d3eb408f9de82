// Package scripts provides utility scripts for database and system management.
//
// The seeding system works like migrations: executed seeds are tracked in the
// seeds table so each one runs at most once, on new and existing databases alike.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const initialAdminSeed = "initial_admin"

// seed is a named unit of initial data. ready reports whether its inputs are
// present; a seed that is not ready is skipped and left unrecorded.
type seed struct {
	name  string
	ready func() bool
	run   func(ctx context.Context, tx *sql.Tx) error
}

// Seeder handles database seeding.
type Seeder struct {
	db          *database.Pool
	passwordCfg *auth.PasswordConfig
	admin       config.SeedSettings
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//   - passwordCfg: Hashing parameters for the seeded administrator password
//   - admin: Credentials of the administrator to create on first start
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, passwordCfg *auth.PasswordConfig, admin config.SeedSettings) *Seeder {
	if passwordCfg == nil {
		passwordCfg = auth.DefaultPasswordConfig()
	}
	return &Seeder{
		db:          db,
		passwordCfg: passwordCfg,
		admin:       admin,
	}
}

func (s *Seeder) seeds() []seed {
	return []seed{
		{
			name:  initialAdminSeed,
			ready: func() bool { return s.admin.AdminEmail != "" },
			run:   s.seedInitialAdmin,
		},
	}
}

// SeedDatabase seeds the database with initial data.
// It creates the seeds tracking table if it doesn't exist, then runs
// all seed functions that haven't been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	for _, sd := range s.seeds() {
		if executedSeeds[sd.name] {
			log.Debug().Str("seed", sd.name).Msg("Seed already executed")
			continue
		}
		if !sd.ready() {
			log.Info().Str("seed", sd.name).Msg("Seed inputs not configured, skipping")
			continue
		}
		log.Info().Str("seed", sd.name).Msg("Running seed")
		if err := s.runSeed(ctx, sd.name, sd.run); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the seeds table if it doesn't exist.
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of executed seeds.
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM seeds`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function within a transaction and records it.
// If the seed operation fails, the transaction is rolled back.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		query := `INSERT INTO seeds (name) VALUES ($1)`
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedInitialAdmin creates the configured administrator unless an admin with
// that email already exists.
func (s *Seeder) seedInitialAdmin(ctx context.Context, tx *sql.Tx) error {
	email := utils.NormalizeEmail(s.admin.AdminEmail)
	if !utils.IsValidEmail(email) {
		return fmt.Errorf("invalid admin email %q", s.admin.AdminEmail)
	}
	if err := utils.ValidatePassword(s.admin.AdminPassword); err != nil {
		return fmt.Errorf("admin password rejected: %w", err)
	}

	hash, salt, err := auth.HashPassword(s.admin.AdminPassword, s.passwordCfg)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO admin_users (email, password_hash, salt, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, email, hash, salt)
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	if created, _ := result.RowsAffected(); created == 0 {
		log.Info().Str("email", email).Msg("Admin already exists, nothing to seed")
	} else {
		log.Info().Str("email", email).Msg("Initial admin created")
	}

	return nil
}
