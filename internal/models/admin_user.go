package models

import (
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// AdminUser is a moderator account. The system actor that performs
// automatic bans is an inactive AdminUser without credentials.
type AdminUser struct {
	ID           int64     `json:"id" db:"admin_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Salt         *string   `json:"-" db:"salt"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the AdminUser model.
func (a *AdminUser) TableName() string {
	return constants.TableAdminUsers
}

// CanLogin reports whether the admin may authenticate with a password.
func (a *AdminUser) CanLogin() bool {
	return a.Active && a.PasswordHash != nil && *a.PasswordHash != ""
}

// AdminCredentials is the admin login payload.
type AdminCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
