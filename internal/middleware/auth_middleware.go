package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

type contextKey string

const accountContextKey contextKey = constants.AccountContextKey

// AccountAdmitter loads an account and decides whether it may use the API.
type AccountAdmitter interface {
	AdmitUser(ctx context.Context, userID int64) (*models.User, error)
}

// JWTAuth is a middleware that requires a valid user access token
func JWTAuth(jwtService auth.JWTValidator) func(http.Handler) http.Handler {
	return auth.RequireRole(auth.NewJWTAuthProvider(jwtService), constants.RoleUser)
}

// AdminAuth is a middleware that requires a valid administrator access token
func AdminAuth(jwtService auth.JWTValidator) func(http.Handler) http.Handler {
	return auth.RequireRole(auth.NewJWTAuthProvider(jwtService), constants.RoleAdmin)
}

// RequireActiveAccount runs after JWTAuth. It rejects banned and unconfirmed
// accounts, lifting lapsed bans first, and stores the account in the
// request context.
//
// Parameters:
//   - admitter: Loads the account and applies the admission rules
//
// Returns:
//   - A middleware answering 403 with the ban reason for suspended accounts
func RequireActiveAccount(admitter AccountAdmitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.GetUserID(r)
			if !ok {
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			account, err := admitter.AdmitUser(r.Context(), userID)
			if err != nil {
				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					logger := utils.RequestLogger(
						chimiddleware.GetReqID(r.Context()),
						utils.FormatInt64(userID),
						r.Method,
						r.URL.Path,
					)
					logger.Info().
						Str("reason", appErr.Message).
						Msg("Account refused")
					utils.ErrorFromAppError(w, appErr)
					return
				}
				utils.InternalServerError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount returns the account stored by RequireActiveAccount.
func GetAccount(r *http.Request) (*models.User, bool) {
	account, ok := r.Context().Value(accountContextKey).(*models.User)
	return account, ok
}

// SecurityHeaders adds security-related HTTP headers to responses
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderXContentTypeOptions, constants.ContentTypeOptionsNoSniff)
			w.Header().Set(constants.HeaderXFrameOptions, constants.FrameOptionsDeny)
			w.Header().Set(constants.HeaderXXSSProtection, constants.XSSProtectionModeBlock)
			w.Header().Set(constants.HeaderReferrerPolicy, constants.ReferrerPolicyStrictOrigin)
			w.Header().Set(constants.HeaderContentSecurityPolicy, constants.CSPDefaultSrc)
			w.Header().Set(constants.HeaderCacheControl, constants.CacheControlNoStore)
			w.Header().Set(constants.HeaderPragma, constants.PragmaNoCache)

			next.ServeHTTP(w, r)
		})
	}
}

// APIVersion stamps every response with the API version.
func APIVersion() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderXAPIVersion, constants.APIVersion)
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of the request's remote address.
// Forwarding headers are not read here; when the API runs behind a trusted
// proxy, chi's RealIP middleware rewrites RemoteAddr before this is called.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
