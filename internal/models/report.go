package models

import (
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// Report is an abuse report filed by one user against another.
type Report struct {
	ID             int64     `json:"id" db:"report_id"`
	ReportedUserID int64     `json:"reported_user_id" db:"reported_user_id"`
	ReporterID     int64     `json:"reporter_id" db:"reporter_id"`
	Reason         string    `json:"reason" db:"reason"`
	Description    string    `json:"description" db:"description"`
	Status         string    `json:"status" db:"status"`
	ReviewedBy     *int64    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	AdminNotes     *string   `json:"admin_notes,omitempty" db:"admin_notes"`
	IPAddress      *string   `json:"-" db:"ip_address"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Report model.
func (r *Report) TableName() string {
	return constants.TableReports
}

// IsPending reports whether the report still awaits review.
func (r *Report) IsPending() bool {
	return r.Status == constants.ReportStatusPending
}

// ReportSubmission is the payload a user sends to file a report. ReporterID
// and IPAddress are filled in from the request context.
type ReportSubmission struct {
	ReporterID     int64  `json:"-"`
	ReportedUserID int64  `json:"reported_user_id" validate:"required,gt=0"`
	Reason         string `json:"reason" validate:"required,report_reason"`
	Description    string `json:"description" validate:"required,min=10,max=1000"`
	IPAddress      string `json:"-"`
}

// ReportTransition is the admin payload for reviewing a pending report.
type ReportTransition struct {
	Status     string `json:"status" validate:"required,report_status"`
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=1000"`
}

// ReportFilter narrows the admin report listing.
type ReportFilter struct {
	Status         string
	Reason         string
	ReportedUserID int64
}

// ReportSubmittedEvent is published after a report is persisted.
type ReportSubmittedEvent struct {
	EventID        string    `json:"event_id"`
	ReportID       int64     `json:"report_id"`
	ReportedUserID int64     `json:"reported_user_id"`
	ReporterID     int64     `json:"reporter_id"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurred_at"`
}
