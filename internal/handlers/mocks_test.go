package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/service"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id int64, update *models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Submit(ctx context.Context, sub *models.ReportSubmission) (*models.Report, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) Transition(ctx context.Context, reportID int64, status string, adminID int64, notes string) (*models.Report, error) {
	args := m.Called(ctx, reportID, status, adminID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, reportID int64) (*models.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context, filter models.ReportFilter, page utils.PaginationParams) ([]*models.Report, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Report), args.Int(1), args.Error(2)
}

func (m *MockReportService) ListReportsByReporter(ctx context.Context, reporterID int64, page utils.PaginationParams) ([]*models.Report, int, error) {
	args := m.Called(ctx, reporterID, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Report), args.Int(1), args.Error(2)
}

// MockBanService is a mock implementation of BanServiceInterface
type MockBanService struct {
	mock.Mock
}

func (m *MockBanService) Ban(ctx context.Context, userID int64, cmd service.BanCommand) error {
	return m.Called(ctx, userID, cmd).Error(0)
}

func (m *MockBanService) Unban(ctx context.Context, userID int64, actorID *int64, ip string) error {
	return m.Called(ctx, userID, actorID, ip).Error(0)
}

func (m *MockBanService) Status(ctx context.Context, userID int64) (models.BanStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.BanStatus), args.Error(1)
}

// MockAdminService is a mock implementation of AdminServiceInterface
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, filter models.UserFilter, page utils.PaginationParams) ([]*service.AccountView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*service.AccountView), args.Int(1), args.Error(2)
}

func (m *MockAdminService) GetUser(ctx context.Context, id int64) (*service.AccountView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccountView), args.Error(1)
}

func (m *MockAdminService) UserBanLogs(ctx context.Context, userID int64, page utils.PaginationParams) ([]*models.BanLogView, int, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.BanLogView), args.Int(1), args.Error(2)
}

func (m *MockAdminService) ListBanLogs(ctx context.Context, filter models.BanLogFilter, page utils.PaginationParams) ([]*models.BanLogView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.BanLogView), args.Int(1), args.Error(2)
}

func (m *MockAdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

// withUser attaches an authenticated user principal to the request
func withUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), userID, "user@example.com", constants.RoleUser))
}

// withAdmin attaches an authenticated admin principal to the request
func withAdmin(r *http.Request, adminID int64) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), adminID, "admin@example.com", constants.RoleAdmin))
}

// decodeResponse parses the response envelope
func decodeResponse(t *testing.T, body []byte) utils.Response {
	t.Helper()
	var response utils.Response
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

// decodeData parses the data field of the response envelope into v
func decodeData(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}
