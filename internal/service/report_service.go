package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/events"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// EventPublisher announces persisted reports.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.ReportSubmittedEvent) error
}

// ReportService handles the abuse report lifecycle
type ReportService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	publisher  EventPublisher
}

// NewReportService creates a new ReportService.
//
// Parameters:
//   - reportRepo: Repository for report storage
//   - userRepo: Repository used to check the reported account exists
//   - publisher: Receives report.submitted events; nil disables them
//
// Returns:
//   - A configured ReportService
func NewReportService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Submit files a report and announces it to the auto-ban evaluator.
//
// Parameters:
//   - ctx: Context for transaction and cancellation control
//   - sub: The submission; Description is trimmed in place
//
// Returns:
//   - The stored report
//   - SelfReportError if the reporter names themselves
//   - ValidationError for an unknown reason or a bad description
//   - NotFoundError if the reported account doesn't exist
//   - DuplicateRecentError if the same reporter filed the same reason
//     against the same user within 24 hours
func (s *ReportService) Submit(ctx context.Context, sub *models.ReportSubmission) (*models.Report, error) {
	if sub.ReporterID == sub.ReportedUserID {
		return nil, utils.NewSelfReportError()
	}

	sub.Description = strings.TrimSpace(sub.Description)
	if err := utils.ValidateStruct(sub); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, sub.ReportedUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewNotFoundError("User", sub.ReportedUserID)
	}

	report := &models.Report{
		ReportedUserID: sub.ReportedUserID,
		ReporterID:     sub.ReporterID,
		Reason:         sub.Reason,
		Description:    sub.Description,
	}
	if sub.IPAddress != "" {
		ip := sub.IPAddress
		report.IPAddress = &ip
	}

	if err := s.reportRepo.CreateUnlessDuplicate(ctx, report, constants.DuplicateReportWindow); err != nil {
		return nil, err
	}

	utils.LogModeration(constants.LogEventReportSubmitted, report.ReportedUserID, 0, map[string]interface{}{
		"report_id":   report.ID,
		"reporter_id": report.ReporterID,
		"reason":      report.Reason,
	})

	s.publish(ctx, report)
	return report, nil
}

// publish announces report. The report is already stored, so a failed
// publish is only logged.
func (s *ReportService) publish(ctx context.Context, report *models.Report) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, constants.EventPublishTimeout)
	defer cancel()

	event := events.NewReportSubmittedEvent(report)
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error().
			Err(err).
			Int64(constants.ColumnReportID, report.ID).
			Str("event_id", event.EventID).
			Msg("Failed to publish report event")
	}
}

// Transition moves a pending report to a review status.
//
// Parameters:
//   - ctx: Context for transaction and cancellation control
//   - reportID: The report to update
//   - status: One of reviewed, resolved or dismissed
//   - adminID: The reviewing administrator
//   - notes: Review notes; blank notes are not stored
//
// Returns:
//   - The updated report
//   - ValidationError for any other status
//   - InvalidTransitionError if the report is no longer pending
//   - NotFoundError if the report doesn't exist
func (s *ReportService) Transition(ctx context.Context, reportID int64, status string, adminID int64, notes string) (*models.Report, error) {
	if !utils.ContainsString(constants.ReportReviewStatuses, status) {
		return nil, utils.NewValidationError("status", "Status must be one of reviewed, resolved, dismissed")
	}

	var notesPtr *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		notesPtr = &trimmed
	}

	report, err := s.reportRepo.Transition(ctx, reportID, status, adminID, notesPtr)
	if err != nil {
		return nil, err
	}

	utils.LogModeration(constants.LogEventReportTransitioned, report.ReportedUserID, adminID, map[string]interface{}{
		"report_id": report.ID,
		"status":    status,
	})
	return report, nil
}

// CountAgainst counts reports filed against userID since the given time,
// optionally for one reason only.
func (s *ReportService) CountAgainst(ctx context.Context, userID int64, since time.Time, reason *string) (int, error) {
	return s.reportRepo.CountAgainst(ctx, userID, since, reason)
}

// GetReport retrieves a report by ID
func (s *ReportService) GetReport(ctx context.Context, reportID int64) (*models.Report, error) {
	return s.reportRepo.GetByID(ctx, reportID)
}

// ListReports returns a page of reports for the admin console
func (s *ReportService) ListReports(ctx context.Context, filter models.ReportFilter, page utils.PaginationParams) ([]*models.Report, int, error) {
	return s.reportRepo.List(ctx, filter, page.Offset(), page.PageSize)
}

// ListReportsByReporter returns the reports a user has filed
func (s *ReportService) ListReportsByReporter(ctx context.Context, reporterID int64, page utils.PaginationParams) ([]*models.Report, int, error) {
	return s.reportRepo.ListByReporter(ctx, reporterID, page.Offset(), page.PageSize)
}
