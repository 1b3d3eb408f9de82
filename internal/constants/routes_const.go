package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	VersionPath = "/version"
)

// Authentication Routes
const (
	AuthBasePath      = "/api/auth"
	AuthRegisterPath  = "/api/auth/signup"
	AuthLoginPath     = "/api/auth/login"
	AuthGooglePath    = "/api/auth/google"
	AuthRefreshPath   = "/api/auth/refresh"
	AuthLogoutPath    = "/api/auth/logout"
	AuthLogoutAllPath = "/api/auth/logout-all"
	AuthVerifyPath    = "/api/auth/verify"
)

// User Routes
const (
	UsersBasePath   = "/api/users"
	UserProfilePath = "/api/users/me"
)

// Report Routes
const (
	ReportsBasePath = "/api/reports"
	ReportsMinePath = "/api/reports/mine"
)

// Admin Routes
const (
	AdminBasePath      = "/api/admin"
	AdminLoginPath     = "/api/admin/login"
	AdminUsersPath     = "/api/admin/users"
	AdminBanLogsPath   = "/api/admin/ban-logs"
	AdminReportsPath   = "/api/admin/reports"
	AdminDashboardPath = "/api/admin/dashboard"
)

// URL Parameters
const (
	ParamID = "id"
)

// Query Parameters
const (
	QueryParamPage     = "page"
	QueryParamPageSize = "page_size"
	QueryParamSearch   = "search"
	QueryParamBanned   = "banned"
	QueryParamProvider = "provider"
	QueryParamStatus   = "status"
	QueryParamReason   = "reason"
	QueryParamAction   = "action"
	QueryParamUserID   = "user_id"
	QueryParamAdminID  = "admin_id"
)
