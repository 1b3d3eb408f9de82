// Package models provides the data structures persisted by the API and the
// request payloads bound to them.
package models

import (
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// Session represents a refresh-token session. Logging out deletes it, and a
// refresh token is only honoured while its session exists.
type Session struct {
	// ID is the unique identifier for this session
	ID string `json:"id" db:"session_id"`

	// UserID references the user who owns this session
	UserID int64 `json:"user_id" db:"user_id"`

	// JWTID is the jti of the refresh token bound to this session
	JWTID string `json:"jwt_id" db:"jwt_id"`

	// ExpiresAt defines when this session will automatically expire
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt records when this session was initiated
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the database table name for the Session model.
func (s *Session) TableName() string {
	return constants.TableSessions
}

// NewSession creates a new Session with the given parameters.
//
// Parameters:
//   - userID: The ID of the user who owns this session
//   - jwtID: The unique identifier of the refresh token
//   - expiryDuration: How long this session should remain valid
//
// Returns:
//   - A new Session pointer with all fields populated
func NewSession(userID int64, jwtID string, expiryDuration time.Duration) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		JWTID:     jwtID,
		ExpiresAt: now.Add(expiryDuration),
		CreatedAt: now,
	}
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
