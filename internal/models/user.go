package models

import (
	"strings"
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// User represents an end-user account. Besides identity and credentials it
// carries the account's ban state, which only the ban engine mutates.
type User struct {
	ID           int64      `json:"id" db:"user_id"`
	Email        string     `json:"email" db:"email"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	Salt         *string    `json:"-" db:"salt"`
	Provider     *string    `json:"provider,omitempty" db:"provider"`
	GoogleID     *string    `json:"-" db:"google_id"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`

	// Ban state. BannedAt and BannedReason are set together; a nil
	// BannedUntil on a banned account means the ban is permanent.
	BannedAt     *time.Time `json:"banned_at,omitempty" db:"banned_at"`
	BannedReason *string    `json:"banned_reason,omitempty" db:"banned_reason"`
	BannedUntil  *time.Time `json:"banned_until,omitempty" db:"banned_until"`
	BannedBy     *int64     `json:"banned_by,omitempty" db:"banned_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new local User. Credentials are populated later during
// the registration process.
func NewUser(email, firstName, lastName string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return constants.TableUsers
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsConfirmed reports whether the account's email has been confirmed.
func (u *User) IsConfirmed() bool {
	return u.ConfirmedAt != nil
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasBanRecord reports whether ban fields are present, whether or not the
// ban is still in force.
func (u *User) HasBanRecord() bool {
	return u.BannedAt != nil
}

// IsBanned reports whether the account is banned at the given time.
func (u *User) IsBanned(now time.Time) bool {
	return u.BannedAt != nil && (u.BannedUntil == nil || u.BannedUntil.After(now))
}

// IsPermanentlyBanned reports whether the account carries a ban without end.
func (u *User) IsPermanentlyBanned() bool {
	return u.BannedAt != nil && u.BannedUntil == nil
}

// Reason returns the ban reason or an empty string.
func (u *User) Reason() string {
	if u.BannedReason == nil {
		return ""
	}
	return *u.BannedReason
}

// ClearBan resets every ban field.
func (u *User) ClearBan() {
	u.BannedAt = nil
	u.BannedReason = nil
	u.BannedUntil = nil
	u.BannedBy = nil
}

// Sanitize removes sensitive information from the User object when sending to clients.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = nil
	sanitized.Salt = nil
	sanitized.GoogleID = nil
	return &sanitized
}

// UserCredentials represents the login credentials provided by a user.
type UserCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserRegistration represents the data required for user registration.
type UserRegistration struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UserUpdate represents the profile fields a user may change.
type UserUpdate struct {
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// GoogleLoginRequest carries a Google ID token obtained by the client.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RefreshRequest carries a refresh token when it is not sent as a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search   string
	Banned   *bool
	Provider string
}
