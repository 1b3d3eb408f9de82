package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// AutoBanRule bans an account that received at least Threshold reports
// within Window. An empty Reason counts reports of every reason. A zero
// Duration bans permanently.
type AutoBanRule struct {
	Name      string
	Reason    string
	Window    time.Duration
	Threshold int
	Duration  time.Duration
	Message   func(count int) string
}

// DefaultAutoBanRules returns the rules in evaluation order. The general
// and spam durations come from the moderation settings.
func DefaultAutoBanRules(cfg config.ModerationSettings) []AutoBanRule {
	return []AutoBanRule{
		{
			Name:      "general_volume",
			Window:    constants.GeneralVolumeWindow,
			Threshold: constants.GeneralVolumeThreshold,
			Duration:  cfg.GeneralBanDuration,
			Message: func(count int) string {
				return fmt.Sprintf("Automatic ban: %d reports in 24 hours", count)
			},
		},
		{
			Name:      "spam_volume",
			Reason:    constants.ReportReasonSpam,
			Window:    constants.SpamVolumeWindow,
			Threshold: constants.SpamVolumeThreshold,
			Duration:  cfg.SpamBanDuration,
			Message: func(count int) string {
				return fmt.Sprintf("Automatic ban: %d spam reports in 48 hours", count)
			},
		},
		{
			Name:      "harassment",
			Reason:    constants.ReportReasonHarassment,
			Window:    constants.HarassmentWindow,
			Threshold: constants.HarassmentThreshold,
			Duration:  constants.HarassmentBanDuration,
			Message: func(count int) string {
				return fmt.Sprintf("Automatic ban: %d harassment reports", count)
			},
		},
		{
			Name:      "threats",
			Reason:    constants.ReportReasonThreats,
			Window:    constants.ThreatsWindow,
			Threshold: constants.ThreatsThreshold,
			Message: func(int) string {
				return "Automatic ban: threats reported"
			},
		},
	}
}

// ReportCounter counts reports filed against an account.
type ReportCounter interface {
	CountAgainst(ctx context.Context, userID int64, since time.Time, reason *string) (int, error)
}

// AutoBanEvaluator bans reported accounts whose recent report counts
// cross one of its rules.
type AutoBanEvaluator struct {
	userRepo   repository.UserRepository
	reports    ReportCounter
	bans       *BanService
	rules      []AutoBanRule
	now        func() time.Time
}

// NewAutoBanEvaluator creates a new AutoBanEvaluator.
//
// Parameters:
//   - userRepo: Repository used to load the reported account
//   - reports: Source of report counts, normally the ReportService
//   - bans: Ban engine that applies automatic bans
//   - rules: Rules in evaluation order; the first match wins
//
// Returns:
//   - A configured AutoBanEvaluator
func NewAutoBanEvaluator(
	userRepo repository.UserRepository,
	reports ReportCounter,
	bans *BanService,
	rules []AutoBanRule,
) *AutoBanEvaluator {
	return &AutoBanEvaluator{
		userRepo:   userRepo,
		reports:    reports,
		bans:       bans,
		rules:      rules,
		now:        time.Now,
	}
}

// Evaluate applies the first matching rule to userID. Accounts under a ban
// are skipped; a lapsed temporary ban is lifted first.
//
// Parameters:
//   - ctx: Context for cancellation control
//   - userID: The reported account
//
// Returns:
//   - The name of the rule that banned the account, or an empty string
//   - AlreadyBannedError if another ban landed while the rules were evaluated
//   - Other errors for repository or database issues
func (e *AutoBanEvaluator) Evaluate(ctx context.Context, userID int64) (string, error) {
	user, err := e.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if _, err := e.bans.ResolveExpired(ctx, user); err != nil {
		return "", err
	}
	now := e.now()
	if user.IsBanned(now) {
		return "", nil
	}

	for _, rule := range e.rules {
		var reason *string
		if rule.Reason != "" {
			r := rule.Reason
			reason = &r
		}

		count, err := e.reports.CountAgainst(ctx, userID, now.Add(-rule.Window), reason)
		if err != nil {
			return "", err
		}
		if count < rule.Threshold {
			continue
		}

		cmd := BanCommand{
			Reason:  rule.Message(count),
			ActorID: e.bans.SystemActorID(),
		}
		if rule.Duration > 0 {
			until := now.Add(rule.Duration)
			cmd.Until = &until
		}

		if err := e.bans.Ban(ctx, userID, cmd); err != nil {
			return "", err
		}

		log.Warn().
			Str("category", constants.LogCategoryModeration).
			Str("event", constants.LogEventAutoBan).
			Int64(constants.UserIDContextKey, userID).
			Str("rule", rule.Name).
			Int("report_count", count).
			Msg("Account banned automatically, admin review recommended")
		return rule.Name, nil
	}

	return "", nil
}

// HandleReportSubmitted evaluates the reported account of event. It is the
// boundary of the asynchronous task: errors and panics are logged and
// never returned to the submitter.
func (e *AutoBanEvaluator) HandleReportSubmitted(ctx context.Context, event *models.ReportSubmittedEvent) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogPanic(r, debug.Stack())
		}
	}()

	_, err := e.Evaluate(ctx, event.ReportedUserID)
	switch {
	case err == nil:
	case utils.IsAlreadyBannedError(err):
		log.Debug().
			Int64(constants.UserIDContextKey, event.ReportedUserID).
			Int64(constants.ColumnReportID, event.ReportID).
			Msg("Account was banned concurrently, auto-ban skipped")
	default:
		log.Error().
			Err(err).
			Int64(constants.UserIDContextKey, event.ReportedUserID).
			Int64(constants.ColumnReportID, event.ReportID).
			Str("event_id", event.EventID).
			Msg("Auto-ban evaluation failed")
	}
}
