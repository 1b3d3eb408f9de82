package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const dashboardPeriod = 7 * 24 * time.Hour

// AccountView is an account as shown in the admin console.
type AccountView struct {
	*models.User
	Ban models.BanStatus `json:"ban"`
}

// AdminService serves the read side of the admin console. Ban and report
// decisions go through BanService and ReportService.
type AdminService struct {
	userRepo   repository.UserRepository
	banLogRepo repository.BanLogRepository
	statsRepo  repository.StatsRepository
	now        func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo repository.UserRepository,
	banLogRepo repository.BanLogRepository,
	statsRepo repository.StatsRepository,
) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		banLogRepo: banLogRepo,
		statsRepo:  statsRepo,
		now:        time.Now,
	}
}

// ListUsers returns a page of accounts with their ban status.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter, page utils.PaginationParams) ([]*AccountView, int, error) {
	users, total, err := s.userRepo.List(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	views := make([]*AccountView, len(users))
	for i, user := range users {
		views[i] = s.view(user, now)
	}

	return views, total, nil
}

// GetUser returns one account with its ban status.
func (s *AdminService) GetUser(ctx context.Context, id int64) (*AccountView, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(user, s.now()), nil
}

// UserBanLogs returns the ban history of one account, newest first.
func (s *AdminService) UserBanLogs(ctx context.Context, userID int64, page utils.PaginationParams) ([]*models.BanLogView, int, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, 0, utils.NewNotFoundError("User", userID)
	}

	entries, total, err := s.banLogRepo.ListByUser(ctx, userID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, err
	}

	return s.views(entries), total, nil
}

// ListBanLogs returns a page of the ban log.
func (s *AdminService) ListBanLogs(ctx context.Context, filter models.BanLogFilter, page utils.PaginationParams) ([]*models.BanLogView, int, error) {
	entries, total, err := s.banLogRepo.List(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, 0, err
	}

	return s.views(entries), total, nil
}

// Dashboard returns the console totals for the past week.
func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	return s.statsRepo.Dashboard(ctx, now, now.Add(-dashboardPeriod))
}

func (s *AdminService) view(user *models.User, now time.Time) *AccountView {
	return &AccountView{
		User: user.Sanitize(),
		Ban:  StatusOf(user, now),
	}
}

func (s *AdminService) views(entries []*models.BanLog) []*models.BanLogView {
	now := s.now()
	views := make([]*models.BanLogView, len(entries))
	for i, entry := range entries {
		views[i] = entry.View(now)
	}
	return views
}
