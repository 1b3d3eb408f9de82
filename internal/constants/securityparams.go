package constants

// Context Key Names
const (
	UserIDContextKey    = "user_id"
	EmailContextKey     = "email"
	RoleContextKey      = "role"
	RequestIDContextKey = "request_id"
	AccountContextKey   = "account"
)

// Auth Token Types
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Token Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Password Validation
const (
	MinPasswordLength = 8
	MaxNameLength     = 100
	MaxEmailLength    = 255
)

// Cookie Names
const (
	RefreshTokenCookie = "refresh_token"
	AuthTokenCookie    = "auth_token"
)

// Redis Key Prefixes
const (
	RedisLockoutPrefix = "auth:lockout:"
)
