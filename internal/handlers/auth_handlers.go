package handlers

import (
	"net/http"
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/middleware"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/service"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// AuthHandler handles authentication-related routes
type AuthHandler struct {
	authService AuthServiceInterface
	jwtService  auth.JWTValidator
}

// NewAuthHandler creates a new AuthHandler.
//
// Parameters:
//   - authService: Service handling sign-in and sessions
//   - jwtService: Supplies the refresh token lifetime used for the cookie
//
// Returns:
//   - A configured AuthHandler; it panics if a dependency is nil
func NewAuthHandler(authService AuthServiceInterface, jwtService auth.JWTValidator) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.UserRegistration
	if err := utils.DecodeAndValidate(r, &reg); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.authService.Register(r.Context(), &reg)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}

// Login handles password authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), &creds, middleware.ClientIP(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.writeSession(w, r, user, tokens)
}

// GoogleLogin handles sign-in with a Google ID token
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, tokens, err := h.authService.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.writeSession(w, r, user, tokens)
}

// RefreshToken handles token refresh. The refresh token is read from the
// cookie, or from the request body for clients that cannot keep cookies.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := refreshTokenFromRequest(r)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(w, r)
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.setRefreshCookie(w, r, tokens.RefreshToken)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    tokens.ExpiresIn,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, err := refreshTokenFromRequest(r); err == nil {
		// A token that cannot be parsed has no session to end
		_ = h.authService.Logout(r.Context(), refreshToken)
	}

	h.clearRefreshCookie(w, r)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgLogoutSuccess,
	})
}

// LogoutAll ends every session of the authenticated user
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.clearRefreshCookie(w, r)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgLogoutAllSuccess,
	})
}

// VerifyToken returns the admitted account behind the access token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.GetAccount(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user_id":       account.ID,
		"email":         account.Email,
		"user":          account,
	})
}

// AdminLogin handles administrator authentication
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.AdminCredentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	admin, tokens, err := h.authService.AdminLogin(r.Context(), &creds, middleware.ClientIP(r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"admin":        admin,
		"access_token": tokens.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   tokens.ExpiresIn,
	})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, user *models.User, tokens *service.TokenPair) {
	h.setRefreshCookie(w, r, tokens.RefreshToken)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, value string) {
	refreshExpiry := h.jwtService.GetConfig().RefreshExpiry
	http.SetCookie(w, &http.Cookie{
		Name:     constants.RefreshTokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(refreshExpiry.Seconds()),
		Expires:  time.Now().Add(refreshExpiry),
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func refreshTokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(constants.RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	if r.Body == nil || r.ContentLength == 0 {
		return "", utils.NewUnauthorizedError("Refresh token not found")
	}

	var req models.RefreshRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return "", err
	}
	if req.RefreshToken == "" {
		return "", utils.NewUnauthorizedError("Refresh token not found")
	}
	return req.RefreshToken, nil
}
