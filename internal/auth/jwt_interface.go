package auth

import (
	"github.com/yasinhessnawi1/collapse-backend/internal/config"
)

// JWTValidator defines the interface for JWT validation
type JWTValidator interface {
	// ValidateToken validates a JWT token and returns its claims if valid
	ValidateToken(tokenString string, expectedType string) (*CustomClaims, error)

	// ParseTokenWithoutValidation parses a token without validating it to extract the JWT ID
	ParseTokenWithoutValidation(tokenString string) (string, error)

	// GetConfig returns the JWT settings configuration
	GetConfig() *config.JWTSettings
}

// TokenService issues and validates tokens.
type TokenService interface {
	JWTValidator

	GenerateAccessToken(userID int64, email, role string) (string, string, error)
	GenerateRefreshToken(userID int64, email, role string) (string, string, error)
}

var _ TokenService = (*JWTService)(nil)
