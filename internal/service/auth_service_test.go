package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/cache"
	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const testPassword = "Str0ngPass!"

// testPasswordConfig keeps argon2 cheap in tests.
var testPasswordConfig = &auth.PasswordConfig{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type authFixture struct {
	service  *AuthService
	users    *MockUserRepository
	sessions *MockSessionRepository
	admins   *MockAdminUserRepository
	jwt      *auth.JWTService
	identity *MockIdentityProvider
	resolver *MockBanResolver
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	lockout := cache.NewMemoryLockoutStore(time.Minute)
	t.Cleanup(lockout.Close)

	f := &authFixture{
		users:    NewMockUserRepository(),
		sessions: NewMockSessionRepository(),
		admins:   NewMockAdminUserRepository(),
		jwt: auth.NewJWTService(&config.JWTSettings{
			Secret:        "test-secret",
			Expiry:        15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "collapse-test",
		}),
		identity: &MockIdentityProvider{},
		resolver: &MockBanResolver{},
	}
	f.service = NewAuthService(
		f.users, f.sessions, f.admins, f.jwt, testPasswordConfig, f.identity,
		lockout, config.LockoutSettings{MaxAttempts: 5, Window: time.Hour}, f.resolver,
	)
	return f
}

func (f *authFixture) addLocalUser(t *testing.T, email string, confirmed bool) *models.User {
	t.Helper()
	hash, salt, err := auth.HashPassword(testPassword, testPasswordConfig)
	require.NoError(t, err)

	user := models.NewUser(email, "Ana", "Lopez")
	user.PasswordHash = &hash
	user.Salt = &salt
	if confirmed {
		user.ConfirmedAt = timePtr(time.Now().Add(-time.Hour))
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func registration(email string) *models.UserRegistration {
	return &models.UserRegistration{
		Email:           email,
		FirstName:       "Ana",
		LastName:        "Lopez",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.service.Register(context.Background(), registration("  Ana@Example.com "))
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.IsConfirmed())
	assert.Nil(t, user.PasswordHash)
	assert.Nil(t, user.Salt)

	stored := f.users.stored(user.ID)
	require.NotNil(t, stored.PasswordHash)
	assert.True(t, auth.VerifyStoredPassword(testPassword, stored.PasswordHash, stored.Salt, testPasswordConfig))
}

func TestAuthService_Register_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		reg    func() *models.UserRegistration
		check  func(error) bool
		preset bool
	}{
		{
			name:   "duplicate email",
			reg:    func() *models.UserRegistration { return registration("ANA@example.com") },
			check:  utils.IsDuplicateError,
			preset: true,
		},
		{
			name: "weak password",
			reg: func() *models.UserRegistration {
				r := registration("ana@example.com")
				r.Password, r.ConfirmPassword = "password", "password"
				return r
			},
			check: utils.IsValidationError,
		},
		{
			name: "passwords differ",
			reg: func() *models.UserRegistration {
				r := registration("ana@example.com")
				r.ConfirmPassword = "Other0ne!"
				return r
			},
			check: utils.IsValidationError,
		},
		{
			name: "invalid email",
			reg: func() *models.UserRegistration {
				return registration("not-an-email")
			},
			check: utils.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tt.preset {
				f.addLocalUser(t, "ana@example.com", true)
			}

			user, err := f.service.Register(context.Background(), tt.reg())

			assert.Nil(t, user)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	created := f.addLocalUser(t, "ana@example.com", true)

	user, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{
		Email:    "Ana@Example.com",
		Password: testPassword,
	}, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, created.ID, user.ID)
	assert.Nil(t, user.PasswordHash)
	assert.Equal(t, int64(900), tokens.ExpiresIn)
	assert.Equal(t, 1, f.sessions.count())

	claims, err := f.jwt.ValidateToken(tokens.AccessToken, constants.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, constants.RoleUser, claims.Role)

	_, err = f.jwt.ValidateToken(tokens.RefreshToken, constants.TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.addLocalUser(t, "ana@example.com", true)

	tests := []struct {
		name  string
		creds models.UserCredentials
	}{
		{"wrong password", models.UserCredentials{Email: "ana@example.com", Password: "Wr0ngPass!"}},
		{"unknown email", models.UserCredentials{Email: "bob@example.com", Password: testPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := f.service.Login(context.Background(), &tt.creds, "10.0.0.1")

			assert.Nil(t, user)
			assert.Nil(t, tokens)
			assert.True(t, errors.Is(err, utils.ErrInvalidCredentials))
		})
	}
	assert.Zero(t, f.sessions.count())
}

func TestAuthService_Login_GoogleOnlyAccountHasNoPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := models.NewUser("ana@example.com", "Ana", "Lopez")
	user.ConfirmedAt = timePtr(time.Now())
	require.NoError(t, f.users.Create(context.Background(), user))

	_, _, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: ""}, "10.0.0.1")

	assert.True(t, errors.Is(err, utils.ErrInvalidCredentials))
}

func TestAuthService_Login_Lockout(t *testing.T) {
	f := newAuthFixture(t)
	f.addLocalUser(t, "ana@example.com", true)
	bad := &models.UserCredentials{Email: "ana@example.com", Password: "Wr0ngPass!"}
	good := &models.UserCredentials{Email: "ana@example.com", Password: testPassword}

	for i := 0; i < 5; i++ {
		_, _, err := f.service.Login(context.Background(), bad, "10.0.0.1")
		require.True(t, errors.Is(err, utils.ErrInvalidCredentials))
	}

	_, _, err := f.service.Login(context.Background(), good, "10.0.0.1")
	require.True(t, errors.Is(err, utils.ErrAccountLocked))
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 429, appErr.StatusCode)

	_, _, err = f.service.Login(context.Background(), good, "10.0.0.2")
	assert.NoError(t, err)
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.addLocalUser(t, "ana@example.com", true)
	bad := &models.UserCredentials{Email: "ana@example.com", Password: "Wr0ngPass!"}
	good := &models.UserCredentials{Email: "ana@example.com", Password: testPassword}

	for round := 0; round < 2; round++ {
		for i := 0; i < 4; i++ {
			_, _, err := f.service.Login(context.Background(), bad, "10.0.0.1")
			require.True(t, errors.Is(err, utils.ErrInvalidCredentials))
		}
		_, _, err := f.service.Login(context.Background(), good, "10.0.0.1")
		require.NoError(t, err)
	}
}

func TestAuthService_Login_Admission(t *testing.T) {
	t.Run("banned", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.addLocalUser(t, "ana@example.com", true)
		until := time.Now().Add(48 * time.Hour)
		require.NoError(t, f.users.SetBan(context.Background(), nil, user.ID, time.Now(), "Spamming links", 7, &until))

		_, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")

		assert.Nil(t, tokens)
		require.True(t, errors.Is(err, utils.ErrAccountSuspended))
		var appErr *utils.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, 403, appErr.StatusCode)
		assert.Equal(t, "Spamming links", appErr.Details["reason"])
		assert.Equal(t, until.UTC().Format(time.RFC3339), appErr.Details["banned_until"])
		assert.Zero(t, f.sessions.count())
	})

	t.Run("expired ban is lifted", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.addLocalUser(t, "ana@example.com", true)
		past := time.Now().Add(-time.Minute)
		require.NoError(t, f.users.SetBan(context.Background(), nil, user.ID, time.Now().Add(-time.Hour), "Spamming links", 7, &past))

		_, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")

		require.NoError(t, err)
		assert.NotNil(t, tokens)
		assert.Equal(t, 1, f.resolver.calls)
	})

	t.Run("unconfirmed", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addLocalUser(t, "ana@example.com", false)

		_, _, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")

		assert.True(t, errors.Is(err, utils.ErrAccountNotConfirmed))
	})
}

func TestAuthService_GoogleLogin(t *testing.T) {
	identity := &auth.ExternalIdentity{
		SubjectID:  "google-sub-1",
		Email:      "ana@example.com",
		GivenName:  "Ana",
		FamilyName: "Lopez",
	}

	t.Run("creates confirmed account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.identity.identity = identity

		user, tokens, err := f.service.GoogleLogin(context.Background(), "id-token")
		require.NoError(t, err)
		require.NotNil(t, tokens)

		stored := f.users.stored(user.ID)
		require.NotNil(t, stored.Provider)
		assert.Equal(t, constants.ProviderGoogle, *stored.Provider)
		require.NotNil(t, stored.GoogleID)
		assert.Equal(t, "google-sub-1", *stored.GoogleID)
		assert.True(t, stored.IsConfirmed())
		assert.False(t, stored.HasPassword())
		assert.Nil(t, user.GoogleID)
	})

	t.Run("links existing local account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.identity.identity = identity
		local := f.addLocalUser(t, "ana@example.com", false)

		user, _, err := f.service.GoogleLogin(context.Background(), "id-token")
		require.NoError(t, err)

		assert.Equal(t, local.ID, user.ID)
		stored := f.users.stored(local.ID)
		assert.Equal(t, "google-sub-1", *stored.GoogleID)
		assert.True(t, stored.IsConfirmed())
		assert.True(t, stored.HasPassword())
	})

	t.Run("matches by subject", func(t *testing.T) {
		f := newAuthFixture(t)
		f.identity.identity = identity

		first, _, err := f.service.GoogleLogin(context.Background(), "id-token")
		require.NoError(t, err)
		second, _, err := f.service.GoogleLogin(context.Background(), "id-token")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 2, f.sessions.count())
	})

	t.Run("rejected token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.identity.err = errors.New("audience mismatch")

		_, _, err := f.service.GoogleLogin(context.Background(), "id-token")

		assert.True(t, errors.Is(err, utils.ErrInvalidToken))
	})

	t.Run("banned account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.identity.identity = identity
		local := f.addLocalUser(t, "ana@example.com", true)
		require.NoError(t, f.users.SetBan(context.Background(), nil, local.ID, time.Now(), "Threats", 7, nil))

		_, tokens, err := f.service.GoogleLogin(context.Background(), "id-token")

		assert.Nil(t, tokens)
		assert.True(t, errors.Is(err, utils.ErrAccountSuspended))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	f.addLocalUser(t, "ana@example.com", true)
	_, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)

	rotated, err := f.service.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, f.sessions.count())

	_, err = f.service.Refresh(context.Background(), tokens.RefreshToken)
	assert.True(t, errors.Is(err, utils.ErrInvalidToken))

	_, err = f.service.Refresh(context.Background(), rotated.AccessToken)
	assert.True(t, errors.Is(err, utils.ErrInvalidToken))

	_, err = f.service.Refresh(context.Background(), "garbage")
	assert.True(t, errors.Is(err, utils.ErrInvalidToken))
}

func TestAuthService_Refresh_BannedAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addLocalUser(t, "ana@example.com", true)
	_, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, f.users.SetBan(context.Background(), nil, user.ID, time.Now(), "Threats", 7, nil))

	_, err = f.service.Refresh(context.Background(), tokens.RefreshToken)

	assert.True(t, errors.Is(err, utils.ErrAccountSuspended))
	assert.Zero(t, f.sessions.count())
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.addLocalUser(t, "ana@example.com", true)
	_, tokens, err := f.service.Login(context.Background(), &models.UserCredentials{Email: "ana@example.com", Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), tokens.RefreshToken))
	assert.Zero(t, f.sessions.count())

	assert.NoError(t, f.service.Logout(context.Background(), tokens.RefreshToken))
	assert.True(t, errors.Is(f.service.Logout(context.Background(), "garbage"), utils.ErrInvalidToken))
}

func TestAuthService_LogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addLocalUser(t, "ana@example.com", true)
	creds := &models.UserCredentials{Email: "ana@example.com", Password: testPassword}
	for i := 0; i < 3; i++ {
		_, _, err := f.service.Login(context.Background(), creds, "10.0.0.1")
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.sessions.count())

	require.NoError(t, f.service.LogoutAll(context.Background(), user.ID))
	assert.Zero(t, f.sessions.count())
}

func TestAuthService_AdmitUser(t *testing.T) {
	f := newAuthFixture(t)
	active := f.addLocalUser(t, "ana@example.com", true)
	banned := f.addLocalUser(t, "bob@example.com", true)
	require.NoError(t, f.users.SetBan(context.Background(), nil, banned.ID, time.Now(), "Threats", 7, nil))

	user, err := f.service.AdmitUser(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, user.ID)

	_, err = f.service.AdmitUser(context.Background(), banned.ID)
	assert.True(t, errors.Is(err, utils.ErrAccountSuspended))

	_, err = f.service.AdmitUser(context.Background(), 404)
	assert.True(t, errors.Is(err, utils.ErrInvalidToken))
}

func TestAuthService_AdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	hash, salt, err := auth.HashPassword(testPassword, testPasswordConfig)
	require.NoError(t, err)
	require.NoError(t, f.admins.Create(context.Background(), &models.AdminUser{
		Email: "admin@example.com", PasswordHash: &hash, Salt: &salt, Active: true,
	}))
	require.NoError(t, f.admins.Create(context.Background(), &models.AdminUser{
		Email: "retired@example.com", PasswordHash: &hash, Salt: &salt, Active: false,
	}))
	_, err = f.admins.UpsertSystemActor(context.Background(), "system@collapse.app")
	require.NoError(t, err)

	admin, tokens, err := f.service.AdminLogin(context.Background(), &models.AdminCredentials{
		Email: "Admin@Example.com", Password: testPassword,
	}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Empty(t, tokens.RefreshToken)
	assert.Zero(t, f.sessions.count())

	claims, err := f.jwt.ValidateToken(tokens.AccessToken, constants.TokenTypeAccess)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, admin.ID, claims.UserID)

	for _, creds := range []*models.AdminCredentials{
		{Email: "admin@example.com", Password: "Wr0ngPass!"},
		{Email: "retired@example.com", Password: testPassword},
		{Email: "system@collapse.app", Password: ""},
		{Email: "nobody@example.com", Password: testPassword},
	} {
		_, _, err := f.service.AdminLogin(context.Background(), creds, "10.0.0.9")
		assert.True(t, errors.Is(err, utils.ErrInvalidCredentials), creds.Email)
	}
}

func TestAuthService_CleanupExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.sessions.Create(context.Background(), &models.Session{JWTID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, f.sessions.Create(context.Background(), &models.Session{JWTID: "live", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}))

	count, err := f.service.CleanupExpiredSessions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, f.sessions.count())
}
