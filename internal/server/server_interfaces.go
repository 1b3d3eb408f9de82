package server

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/collapse-backend/internal/database"
)

// ServerTestInterface defines the server lifecycle used by cmd/api and tests.
type ServerTestInterface interface {
	// SetupRoutes configures the HTTP routes for the server
	SetupRoutes()

	// GetRouter returns the configured router for request handling
	GetRouter() chi.Router

	// Start begins listening for HTTP requests
	Start() error

	// Shutdown gracefully stops the server
	Shutdown(ctx context.Context) error

	// SetupMaintenanceTasks initializes background maintenance operations
	SetupMaintenanceTasks()
}

// ServerDBHealthChecker defines the database operations the server relies on
// outside of the repositories.
type ServerDBHealthChecker interface {
	// HealthCheck verifies the database connection is working properly
	HealthCheck(ctx context.Context) error

	// Close terminates the database connection
	Close()
}

var (
	_ ServerTestInterface   = (*Server)(nil)
	_ ServerDBHealthChecker = (*database.Pool)(nil)
)
