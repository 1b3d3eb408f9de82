package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/cache"
	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// BanResolver lifts bans whose expiry has passed. BanService implements it.
type BanResolver interface {
	ResolveExpired(ctx context.Context, user *models.User) (bool, error)
}

// TokenPair is the result of a successful sign-in.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	adminRepo   repository.AdminUserRepository
	jwtService  auth.TokenService
	passwordCfg *auth.PasswordConfig
	identity    auth.IdentityProvider
	lockout     cache.LockoutStore
	lockoutCfg  config.LockoutSettings
	bans        BanResolver
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
//
// Parameters:
//   - userRepo: Repository for user accounts
//   - sessionRepo: Repository for refresh-token sessions
//   - adminRepo: Repository for administrator accounts
//   - jwtService: Issues and validates tokens
//   - passwordCfg: Argon2 parameters for hashing passwords
//   - identity: Verifies Google ID tokens
//   - lockout: Counts failed logins per client address
//   - lockoutCfg: Failure threshold and window; zero values take the defaults
//   - bans: Lifts lapsed bans during admission
//
// Returns:
//   - A configured AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	adminRepo repository.AdminUserRepository,
	jwtService auth.TokenService,
	passwordCfg *auth.PasswordConfig,
	identity auth.IdentityProvider,
	lockout cache.LockoutStore,
	lockoutCfg config.LockoutSettings,
	bans BanResolver,
) *AuthService {
	if lockoutCfg.MaxAttempts <= 0 {
		lockoutCfg.MaxAttempts = constants.DefaultLockoutMaxAttempts
	}
	if lockoutCfg.Window <= 0 {
		lockoutCfg.Window = constants.DefaultLockoutWindow
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		adminRepo:   adminRepo,
		jwtService:  jwtService,
		passwordCfg: passwordCfg,
		identity:    identity,
		lockout:     lockout,
		lockoutCfg:  lockoutCfg,
		bans:        bans,
		now:         time.Now,
	}
}

// Register creates a new local account. Local accounts are confirmed at
// creation.
func (s *AuthService) Register(ctx context.Context, reg *models.UserRegistration) (*models.User, error) {
	reg.Email = utils.NormalizeEmail(reg.Email)
	if err := utils.ValidateStruct(reg); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, utils.NewDuplicateError("User", "email", reg.Email)
	}

	passwordHash, salt, err := auth.HashPassword(reg.Password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(reg.Email, reg.FirstName, reg.LastName)
	user.PasswordHash = &passwordHash
	user.Salt = &salt
	confirmedAt := s.now()
	user.ConfirmedAt = &confirmedAt

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.LogAuth(constants.LogEventRegister, strconv.FormatInt(user.ID, 10), user.Email, true, "")

	return user.Sanitize(), nil
}

// Login verifies credentials for the given client address. Failed attempts
// count against the address; once it is locked no credentials are checked
// until the lock lifts.
//
// Parameters:
//   - ctx: Context for cancellation control
//   - creds: Email and password
//   - ip: The client address the lockout is keyed on
//
// Returns:
//   - The admitted user and a new token pair
//   - AccountLockedError while the address is locked out
//   - InvalidCredentialsError for an unknown email or a wrong password
//   - AccountSuspendedError if a ban is in force
func (s *AuthService) Login(ctx context.Context, creds *models.UserCredentials, ip string) (*models.User, *TokenPair, error) {
	if err := s.checkLockout(ctx, ip); err != nil {
		return nil, nil, err
	}

	email := utils.NormalizeEmail(creds.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !utils.IsNotFoundError(err) {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	var hash, salt *string
	if user != nil {
		hash, salt = user.PasswordHash, user.Salt
	}
	if !auth.VerifyStoredPassword(creds.Password, hash, salt, s.passwordCfg) {
		s.recordFailure(ctx, ip)
		utils.LogAuth(constants.LogEventLogin, "0", utils.MaskEmail(email), false, "invalid credentials")
		return nil, nil, utils.NewInvalidCredentialsError()
	}

	if err := s.admit(ctx, user); err != nil {
		utils.LogAuth(constants.LogEventLogin, strconv.FormatInt(user.ID, 10), utils.MaskEmail(email), false, err.Error())
		return nil, nil, err
	}

	s.clearLockout(ctx, ip)

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	utils.LogAuth(constants.LogEventLogin, strconv.FormatInt(user.ID, 10), utils.MaskEmail(email), true, "")

	return user.Sanitize(), tokens, nil
}

// GoogleLogin signs in with a Google ID token. An account is matched by
// Google subject first and then by email; an email match is linked to the
// Google identity. Unknown identities get a new confirmed account.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*models.User, *TokenPair, error) {
	if s.identity == nil {
		return nil, nil, utils.NewUnauthorizedError("Google sign-in is not configured")
	}

	identity, err := s.identity.Verify(ctx, idToken)
	if err != nil {
		utils.LogAuth(constants.LogEventGoogleLogin, "0", "", false, err.Error())
		return nil, nil, utils.NewInvalidTokenError()
	}

	user, err := s.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	if err := s.admit(ctx, user); err != nil {
		utils.LogAuth(constants.LogEventGoogleLogin, strconv.FormatInt(user.ID, 10), utils.MaskEmail(user.Email), false, err.Error())
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	utils.LogAuth(constants.LogEventGoogleLogin, strconv.FormatInt(user.ID, 10), utils.MaskEmail(user.Email), true, "")

	return user.Sanitize(), tokens, nil
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, identity *auth.ExternalIdentity) (*models.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, identity.SubjectID)
	if err == nil {
		return user, nil
	}
	if !utils.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	user, err = s.userRepo.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		return s.linkGoogleIdentity(ctx, user, identity)
	case !utils.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	provider := constants.ProviderGoogle
	subject := identity.SubjectID
	confirmedAt := s.now()

	user = models.NewUser(identity.Email, identity.GivenName, identity.FamilyName)
	user.Provider = &provider
	user.GoogleID = &subject
	user.ConfirmedAt = &confirmedAt

	if err := s.userRepo.Create(ctx, user); err != nil {
		if !utils.IsDuplicateError(err) {
			return nil, err
		}
		// Lost a race with a concurrent sign-in for the same email.
		existing, getErr := s.userRepo.GetByEmail(ctx, identity.Email)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get user after duplicate insert: %w", getErr)
		}
		return s.linkGoogleIdentity(ctx, existing, identity)
	}

	return user, nil
}

func (s *AuthService) linkGoogleIdentity(ctx context.Context, user *models.User, identity *auth.ExternalIdentity) (*models.User, error) {
	subject := identity.SubjectID
	user.GoogleID = &subject
	if user.Provider == nil {
		provider := constants.ProviderGoogle
		user.Provider = &provider
	}
	if user.ConfirmedAt == nil {
		confirmedAt := s.now()
		user.ConfirmedAt = &confirmedAt
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link google identity: %w", err)
	}

	return user, nil
}

// Refresh exchanges a refresh token for a new token pair. The presented
// token's session is consumed whether or not the exchange succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	jwtID, err := s.jwtService.ParseTokenWithoutValidation(refreshToken)
	if err != nil {
		return nil, utils.NewInvalidTokenError()
	}

	isValid, err := s.sessionRepo.IsValidSession(ctx, jwtID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session validity: %w", err)
	}
	if !isValid {
		return nil, utils.NewInvalidTokenError()
	}

	claims, err := s.jwtService.ValidateToken(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		_ = s.sessionRepo.DeleteByJWTID(ctx, jwtID)
		return nil, err
	}

	if err := s.sessionRepo.DeleteByJWTID(ctx, jwtID); err != nil && !utils.IsNotFoundError(err) {
		log.Warn().
			Err(err).
			Str("jwt_id", jwtID).
			Msg("Failed to delete old session during token refresh")
	}

	user, err := s.AdmitUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", user.ID).
		Msg("Tokens refreshed successfully")

	return tokens, nil
}

// Logout invalidates the session behind a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	jwtID, err := s.jwtService.ParseTokenWithoutValidation(refreshToken)
	if err != nil {
		return utils.NewInvalidTokenError()
	}

	if err := s.sessionRepo.DeleteByJWTID(ctx, jwtID); err != nil {
		if utils.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// LogoutAll invalidates every session of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// AdmitUser loads the account and checks it may use the API: expired bans
// are lifted, banned and unconfirmed accounts are refused.
func (s *AuthService) AdmitUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewInvalidTokenError()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.admit(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitize(), nil
}

// AdminLogin signs an administrator in. Administrators receive an access
// token only.
func (s *AuthService) AdminLogin(ctx context.Context, creds *models.AdminCredentials, ip string) (*models.AdminUser, *TokenPair, error) {
	key := ""
	if ip != "" {
		key = "admin:" + ip
	}
	if err := s.checkLockout(ctx, key); err != nil {
		return nil, nil, err
	}

	email := utils.NormalizeEmail(creds.Email)
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil && !utils.IsNotFoundError(err) {
		return nil, nil, fmt.Errorf("failed to get admin: %w", err)
	}

	var hash, salt *string
	if admin != nil && admin.CanLogin() {
		hash, salt = admin.PasswordHash, admin.Salt
	}
	if !auth.VerifyStoredPassword(creds.Password, hash, salt, s.passwordCfg) {
		s.recordFailure(ctx, key)
		utils.LogAuth(constants.LogEventLogin, "0", utils.MaskEmail(email), false, "invalid admin credentials")
		return nil, nil, utils.NewInvalidCredentialsError()
	}

	s.clearLockout(ctx, key)

	accessToken, _, err := s.jwtService.GenerateAccessToken(admin.ID, admin.Email, constants.RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	utils.LogAuth(constants.LogEventLogin, strconv.FormatInt(admin.ID, 10), utils.MaskEmail(email), true, "admin")

	return admin, &TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.GetConfig().Expiry.Seconds()),
	}, nil
}

// CleanupExpiredSessions removes expired sessions.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if count > 0 {
		log.Info().Int64("count", count).Msg("Removed expired sessions")
	}

	return count, nil
}

func (s *AuthService) admit(ctx context.Context, user *models.User) error {
	if user.HasBanRecord() && s.bans != nil {
		if _, err := s.bans.ResolveExpired(ctx, user); err != nil {
			return fmt.Errorf("failed to resolve expired ban: %w", err)
		}
	}

	if user.IsBanned(s.now()) {
		return utils.NewAccountSuspendedError(user.Reason(), user.BannedUntil)
	}

	if !user.IsConfirmed() {
		return utils.NewAccountNotConfirmedError()
	}

	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, _, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, constants.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJWTID, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, constants.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	cfg := s.jwtService.GetConfig()
	session := models.NewSession(user.ID, refreshJWTID, cfg.RefreshExpiry)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(cfg.Expiry.Seconds()),
	}, nil
}

// checkLockout fails open: a lockout store outage must not block sign-in.
func (s *AuthService) checkLockout(ctx context.Context, key string) error {
	if s.lockout == nil || key == "" {
		return nil
	}

	state, err := s.lockout.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read lockout state")
		return nil
	}

	now := s.now()
	if state.IsLocked(now) {
		return utils.NewAccountLockedError(state.RetryAfter(now))
	}

	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.lockout == nil || key == "" {
		return
	}

	state, err := s.lockout.RecordFailure(ctx, key, s.now(), s.lockoutCfg.MaxAttempts, s.lockoutCfg.Window)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to record failed login")
		return
	}
	if state.IsLocked(s.now()) {
		log.Warn().
			Int("failed_count", state.FailedCount).
			Time("locked_until", *state.LockedUntil).
			Msg("Client locked out after repeated failed logins")
	}
}

func (s *AuthService) clearLockout(ctx context.Context, key string) {
	if s.lockout == nil || key == "" {
		return
	}
	if err := s.lockout.Clear(ctx, key); err != nil {
		log.Warn().Err(err).Msg("Failed to clear lockout state")
	}
}
