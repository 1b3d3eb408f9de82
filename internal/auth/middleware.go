// Package auth provides authentication for the API: JWT issuing and
// validation, password hashing, Google sign-in and the request context
// helpers that carry the authenticated principal.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// Context keys for storing authenticated principal information and request metadata.
const (
	// UserIDContextKey holds the authenticated user or admin id.
	UserIDContextKey ContextKey = constants.UserIDContextKey

	// EmailContextKey holds the authenticated principal's email.
	EmailContextKey ContextKey = constants.EmailContextKey

	// RoleContextKey holds the token role (user or admin).
	RoleContextKey ContextKey = constants.RoleContextKey

	// RequestIDContextKey holds the unique request ID.
	RequestIDContextKey ContextKey = constants.RequestIDContextKey
)

// JWTAuthProvider extracts and validates access tokens from requests.
type JWTAuthProvider struct {
	jwtService JWTValidator
}

// NewJWTAuthProvider creates a new JWTAuthProvider with the specified JWT validator.
func NewJWTAuthProvider(jwtService JWTValidator) *JWTAuthProvider {
	return &JWTAuthProvider{
		jwtService: jwtService,
	}
}

// Authenticate reads the access token from the Authorization header, or the
// auth cookie as a fallback, and returns its claims.
func (p *JWTAuthProvider) Authenticate(r *http.Request) (*CustomClaims, error) {
	authHeader := r.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		cookie, err := r.Cookie(constants.AuthTokenCookie)
		if err != nil {
			return nil, utils.ErrUnauthorized
		}
		authHeader = constants.BearerTokenPrefix + cookie.Value
	}

	if !strings.HasPrefix(authHeader, constants.BearerTokenPrefix) {
		return nil, utils.ErrUnauthorized
	}

	token := strings.TrimPrefix(authHeader, constants.BearerTokenPrefix)
	return p.jwtService.ValidateToken(token, constants.TokenTypeAccess)
}

// RequireRole is a middleware that requires a valid access token carrying
// role. A valid token with another role is rejected with 403.
func RequireRole(provider *JWTAuthProvider, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set(constants.HeaderXRequestID, requestID)
			}
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)

			claims, err := provider.Authenticate(r)
			if err != nil {
				log.Info().
					Err(err).
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Authentication failed")
				writeAuthError(w, err)
				return
			}

			if claims.Role != role {
				log.Warn().
					Int64("user_id", claims.UserID).
					Str("role", claims.Role).
					Str("required_role", role).
					Str("path", r.URL.Path).
					Msg("Role check failed")
				utils.Forbidden(w, constants.MsgAccessDenied)
				return
			}

			ctx = WithPrincipal(ctx, claims.UserID, claims.Email, claims.Role)

			log.Debug().
				Int64("user_id", claims.UserID).
				Str("role", claims.Role).
				Str("request_id", requestID).
				Str("path", r.URL.Path).
				Msg("Request authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		utils.ErrorFromAppError(w, appErr)
	case errors.Is(err, utils.ErrUnauthorized):
		utils.Unauthorized(w, constants.MsgAuthRequired)
	default:
		utils.Error(w, http.StatusUnauthorized, constants.CodeUnauthorized, constants.MsgAuthRequired, nil)
	}
}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, id int64, email, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, id)
	ctx = context.WithValue(ctx, EmailContextKey, email)
	return context.WithValue(ctx, RoleContextKey, role)
}

// GetUserID extracts the authenticated id from the request context.
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetEmail extracts the email from the request context.
func GetEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(EmailContextKey).(string)
	return email, ok
}

// GetRole extracts the token role from the request context.
func GetRole(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(RoleContextKey).(string)
	return role, ok
}

// GetRequestID extracts the request ID from the request context.
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDContextKey).(string)
	return requestID, ok
}

// IsAdmin reports whether the request was authenticated with an admin token.
func IsAdmin(r *http.Request) bool {
	role, ok := GetRole(r)
	return ok && role == constants.RoleAdmin
}
