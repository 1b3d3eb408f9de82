package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout   = 30 * time.Second
	DBQueryTimeout        = 15 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour
)

// Authentication Timeouts
const (
	DefaultJWTExpiry        = 15 * time.Minute
	DefaultJWTRefreshExpiry = 7 * 24 * time.Hour
	DefaultLockoutWindow    = 1 * time.Hour
	LockoutCleanupInterval  = 10 * time.Minute
	IdentityProviderTimeout = 10 * time.Second
)

// Moderation Timeouts
const (
	EvaluationTimeout   = 30 * time.Second
	NotificationTimeout = 15 * time.Second
	EventPublishTimeout = 5 * time.Second
	KafkaPollTimeout    = 250 * time.Millisecond
)

// Operation Durations
const (
	CookieMaxAge30Days = 30 * 24 * 60 * 60 // in seconds
)
