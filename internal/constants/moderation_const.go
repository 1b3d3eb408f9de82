package constants

import "time"

// Ban log actions
const (
	BanActionBanned     = "banned"
	BanActionUnbanned   = "unbanned"
	BanActionAutoBanned = "auto_banned"
)

// Ban statuses returned by the ban engine
const (
	BanStatusActive            = "active"
	BanStatusPermanentlyBanned = "permanently_banned"
	BanStatusTemporarilyBanned = "temporarily_banned"
)

// Report reasons
const (
	ReportReasonSpam                 = "spam"
	ReportReasonHarassment           = "harassment"
	ReportReasonInappropriateContent = "inappropriate_content"
	ReportReasonThreats              = "threats"
	ReportReasonFakeProfile          = "fake_profile"
	ReportReasonOther                = "other"
)

// Report statuses
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// ReportReasons lists every accepted report reason.
var ReportReasons = []string{
	ReportReasonSpam,
	ReportReasonHarassment,
	ReportReasonInappropriateContent,
	ReportReasonThreats,
	ReportReasonFakeProfile,
	ReportReasonOther,
}

// ReportReviewStatuses lists the statuses a pending report may move to.
var ReportReviewStatuses = []string{
	ReportStatusReviewed,
	ReportStatusResolved,
	ReportStatusDismissed,
}

// Field limits
const (
	MinBanReasonLength         = 3
	MaxBanReasonLength         = 1000
	MinReportDescriptionLength = 10
	MaxReportDescriptionLength = 1000
)

// DuplicateReportWindow is the period in which a reporter cannot file the
// same reason against the same user twice.
const DuplicateReportWindow = 24 * time.Hour

// Auto-ban rule windows and thresholds
const (
	GeneralVolumeWindow    = 24 * time.Hour
	GeneralVolumeThreshold = 5

	SpamVolumeWindow    = 48 * time.Hour
	SpamVolumeThreshold = 3

	HarassmentWindow      = 12 * time.Hour
	HarassmentThreshold   = 2
	HarassmentBanDuration = 7 * 24 * time.Hour

	ThreatsWindow    = 1 * time.Hour
	ThreatsThreshold = 1
)

// Event names
const (
	EventReportSubmitted = "report.submitted"
)
