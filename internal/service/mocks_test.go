package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// Mock implementations for testing. The repositories hand out copies, as
// a database would.

type MockUserRepository struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
	errs   map[string]error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*models.User),
		nextID: 1,
		errs:   make(map[string]error),
	}
}

func (m *MockUserRepository) failWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

func (m *MockUserRepository) stored(id int64) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil
	}
	cp := *user
	return &cp
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["Create"]; err != nil {
		return err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return utils.NewDuplicateError("User", "email", user.Email)
		}
	}

	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := m.errs["GetByID"]; err != nil {
		return nil, err
	}
	user := m.stored(id)
	if user == nil {
		return nil, utils.NewNotFoundError("User", id)
	}
	return user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("User", email)
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NewNotFoundError("User", googleID)
}

func (m *MockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return m.stored(id) != nil, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return utils.NewNotFoundError("User", user.ID)
	}
	existing.Email = user.Email
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Provider = user.Provider
	existing.GoogleID = user.GoogleID
	existing.ConfirmedAt = user.ConfirmedAt
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]*models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*models.User
	for _, id := range ids {
		u := *m.users[id]
		if filter.Banned != nil && u.IsBanned(time.Now()) != *filter.Banned {
			continue
		}
		out = append(out, &u)
	}
	total := len(out)
	if offset >= total {
		return []*models.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	if err := m.errs["GetForUpdate"]; err != nil {
		return nil, err
	}
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) SetBan(ctx context.Context, tx *sql.Tx, id int64, bannedAt time.Time, reason string, bannedBy int64, until *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["SetBan"]; err != nil {
		return err
	}
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.BannedAt = &bannedAt
	user.BannedReason = &reason
	user.BannedBy = &bannedBy
	user.BannedUntil = until
	return nil
}

func (m *MockUserRepository) ClearBan(ctx context.Context, tx *sql.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User", id)
	}
	user.ClearBan()
	return nil
}

type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.JWTID] = session
	return nil
}

func (m *MockSessionRepository) GetByJWTID(ctx context.Context, jwtID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[jwtID]
	if !ok {
		return nil, utils.NewNotFoundError("Session", jwtID)
	}
	return session, nil
}

func (m *MockSessionRepository) DeleteByJWTID(ctx context.Context, jwtID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[jwtID]; !ok {
		return utils.NewNotFoundError("Session", jwtID)
	}
	delete(m.sessions, jwtID)
	return nil
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, session := range m.sessions {
		if session.IsExpired() {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}

func (m *MockSessionRepository) IsValidSession(ctx context.Context, jwtID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[jwtID]
	return ok && !session.IsExpired(), nil
}

type MockAdminUserRepository struct {
	mu     sync.Mutex
	admins map[int64]*models.AdminUser
	nextID int64
}

func NewMockAdminUserRepository() *MockAdminUserRepository {
	return &MockAdminUserRepository{admins: make(map[int64]*models.AdminUser), nextID: 1}
}

func (m *MockAdminUserRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == admin.Email {
			return utils.NewDuplicateError("AdminUser", "email", admin.Email)
		}
	}
	admin.ID = m.nextID
	m.nextID++
	m.admins[admin.ID] = admin
	return nil
}

func (m *MockAdminUserRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return nil, utils.NewNotFoundError("AdminUser", id)
	}
	return admin, nil
}

func (m *MockAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, utils.NewNotFoundError("AdminUser", email)
}

func (m *MockAdminUserRepository) UpsertSystemActor(ctx context.Context, email string) (int64, error) {
	if admin, err := m.GetByEmail(ctx, email); err == nil {
		return admin.ID, nil
	}
	admin := &models.AdminUser{Email: email}
	if err := m.Create(ctx, admin); err != nil {
		return 0, err
	}
	return admin.ID, nil
}

type MockBanLogRepository struct {
	mu      sync.Mutex
	entries []*models.BanLog
	err     error
}

func NewMockBanLogRepository() *MockBanLogRepository {
	return &MockBanLogRepository{}
}

func (m *MockBanLogRepository) all() []*models.BanLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.BanLog(nil), m.entries...)
}

func (m *MockBanLogRepository) Create(ctx context.Context, q database.Querier, entry *models.BanLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockBanLogRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.BanLog, int, error) {
	return m.List(ctx, models.BanLogFilter{UserID: userID}, offset, limit)
}

func (m *MockBanLogRepository) List(ctx context.Context, filter models.BanLogFilter, offset, limit int) ([]*models.BanLog, int, error) {
	var out []*models.BanLog
	entries := m.all()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if filter.AdminID != 0 && e.AdminUserID != filter.AdminID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	total := len(out)
	if offset >= total {
		return []*models.BanLog{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

type MockReportRepository struct {
	mu       sync.Mutex
	reports  []*models.Report
	countErr error
	window   time.Duration
}

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

// add stores a report against reportedID created at the given time.
func (m *MockReportRepository) add(reportedID, reporterID int64, reason string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, &models.Report{
		ID:             int64(len(m.reports) + 1),
		ReportedUserID: reportedID,
		ReporterID:     reporterID,
		Reason:         reason,
		Status:         constants.ReportStatusPending,
		CreatedAt:      at,
		UpdatedAt:      at,
	})
}

func (m *MockReportRepository) CreateUnlessDuplicate(ctx context.Context, report *models.Report, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = window
	now := time.Now()
	for _, r := range m.reports {
		if r.ReporterID == report.ReporterID && r.ReportedUserID == report.ReportedUserID &&
			r.Reason == report.Reason && r.CreatedAt.After(now.Add(-window)) {
			return utils.NewDuplicateRecentError()
		}
	}
	report.ID = int64(len(m.reports) + 1)
	report.Status = constants.ReportStatusPending
	report.CreatedAt = now
	report.UpdatedAt = now
	m.reports = append(m.reports, report)
	return nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, utils.NewNotFoundError("Report", id)
}

func (m *MockReportRepository) Transition(ctx context.Context, id int64, status string, adminID int64, notes *string) (*models.Report, error) {
	report, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !report.IsPending() {
		return nil, utils.NewInvalidTransitionError(report.Status, status)
	}
	report.Status = status
	report.ReviewedBy = &adminID
	report.AdminNotes = notes
	return report, nil
}

func (m *MockReportRepository) CountAgainst(ctx context.Context, userID int64, since time.Time, reason *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, r := range m.reports {
		if r.ReportedUserID != userID || r.CreatedAt.Before(since) {
			continue
		}
		if reason != nil && r.Reason != *reason {
			continue
		}
		count++
	}
	return count, nil
}

func (m *MockReportRepository) List(ctx context.Context, filter models.ReportFilter, offset, limit int) ([]*models.Report, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Report
	for _, r := range m.reports {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *MockReportRepository) ListByReporter(ctx context.Context, reporterID int64, offset, limit int) ([]*models.Report, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Report
	for _, r := range m.reports {
		if r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

type MockStatsRepository struct {
	stats      *models.DashboardStats
	now, since time.Time
}

func (m *MockStatsRepository) Dashboard(ctx context.Context, now, since time.Time) (*models.DashboardStats, error) {
	m.now, m.since = now, since
	return m.stats, nil
}

type MockNotifier struct {
	mu       sync.Mutex
	banned   []int64
	unbanned []int64
	err      error
}

func (m *MockNotifier) NotifyBanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banned = append(m.banned, user.ID)
	return m.err
}

func (m *MockNotifier) NotifyUnbanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbanned = append(m.unbanned, user.ID)
	return m.err
}

func (m *MockNotifier) calls() ([]int64, []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.banned...), append([]int64(nil), m.unbanned...)
}

type MockPublisher struct {
	mu     sync.Mutex
	events []*models.ReportSubmittedEvent
	err    error
}

func (m *MockPublisher) Publish(ctx context.Context, event *models.ReportSubmittedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

type MockIdentityProvider struct {
	identity *auth.ExternalIdentity
	err      error
}

func (m *MockIdentityProvider) Verify(ctx context.Context, token string) (*auth.ExternalIdentity, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

// MockBanResolver clears expired bans without touching storage.
type MockBanResolver struct {
	calls int
}

func (m *MockBanResolver) ResolveExpired(ctx context.Context, user *models.User) (bool, error) {
	m.calls++
	if !IsExpired(user, time.Now()) {
		return false, nil
	}
	user.ClearBan()
	return true, nil
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
