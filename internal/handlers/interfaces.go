// Package handlers provides HTTP request handlers for the moderation API.
// Handlers depend on the service interfaces declared here rather than on
// concrete services so that they can be tested with hand-written mocks.
package handlers

import (
	"context"

	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/service"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// AuthServiceInterface defines the methods required from the authentication service.
type AuthServiceInterface interface {
	// Register creates a confirmed local account.
	Register(ctx context.Context, reg *models.UserRegistration) (*models.User, error)

	// Login checks the password and admission state of an account. ip keys
	// the failed-attempt lockout.
	//
	// Returns:
	//   - The sanitized account
	//   - The issued access and refresh tokens
	//   - An error if the credentials are wrong, the client is locked out,
	//     or the account is suspended or unconfirmed
	Login(ctx context.Context, creds *models.UserCredentials, ip string) (*models.User, *service.TokenPair, error)

	// GoogleLogin verifies a Google ID token, then finds, links or creates
	// the matching account.
	GoogleLogin(ctx context.Context, idToken string) (*models.User, *service.TokenPair, error)

	// Refresh rotates a refresh token. The old session is consumed.
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)

	// Logout invalidates the session behind a refresh token.
	Logout(ctx context.Context, refreshToken string) error

	// LogoutAll invalidates every session of the user.
	LogoutAll(ctx context.Context, userID int64) error

	// AdminLogin authenticates an administrator.
	AdminLogin(ctx context.Context, creds *models.AdminCredentials, ip string) (*models.AdminUser, *service.TokenPair, error)
}

// UserServiceInterface defines the profile operations of the current user.
type UserServiceInterface interface {
	GetProfile(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, update *models.UserUpdate) (*models.User, error)
}

// ReportServiceInterface defines the report lifecycle used by users and admins.
type ReportServiceInterface interface {
	// Submit files a report. Self reports and repeats of the same reason
	// within the suppression window are rejected.
	Submit(ctx context.Context, sub *models.ReportSubmission) (*models.Report, error)

	// Transition moves a pending report to a terminal status.
	Transition(ctx context.Context, reportID int64, status string, adminID int64, notes string) (*models.Report, error)

	GetReport(ctx context.Context, reportID int64) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter, page utils.PaginationParams) ([]*models.Report, int, error)
	ListReportsByReporter(ctx context.Context, reporterID int64, page utils.PaginationParams) ([]*models.Report, int, error)
}

// BanServiceInterface defines the ban engine operations exposed to admins.
type BanServiceInterface interface {
	// Ban bans an account. A nil Until in the command makes it permanent.
	Ban(ctx context.Context, userID int64, cmd service.BanCommand) error

	// Unban lifts a ban. A nil actorID attributes the unban to the system actor.
	Unban(ctx context.Context, userID int64, actorID *int64, ip string) error

	// Status derives the ban state of an account.
	Status(ctx context.Context, userID int64) (models.BanStatus, error)
}

// AdminServiceInterface defines the read side of the admin console.
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, filter models.UserFilter, page utils.PaginationParams) ([]*service.AccountView, int, error)
	GetUser(ctx context.Context, id int64) (*service.AccountView, error)
	UserBanLogs(ctx context.Context, userID int64, page utils.PaginationParams) ([]*models.BanLogView, int, error)
	ListBanLogs(ctx context.Context, filter models.BanLogFilter, page utils.PaginationParams) ([]*models.BanLogView, int, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

var (
	_ AuthServiceInterface   = (*service.AuthService)(nil)
	_ UserServiceInterface   = (*service.UserService)(nil)
	_ ReportServiceInterface = (*service.ReportService)(nil)
	_ BanServiceInterface    = (*service.BanService)(nil)
	_ AdminServiceInterface  = (*service.AdminService)(nil)
)
