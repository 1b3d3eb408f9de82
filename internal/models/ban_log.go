package models

import (
	"time"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
)

// banLogTimeLayout formats ban end times in descriptions.
const banLogTimeLayout = "02/01/2006 15:04"

// BanLog is one append-only audit entry describing a ban or unban.
type BanLog struct {
	ID          int64      `json:"id" db:"ban_log_id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	AdminUserID int64      `json:"admin_user_id" db:"admin_user_id"`
	Action      string     `json:"action" db:"action"`
	Reason      string     `json:"reason" db:"reason"`
	BannedUntil *time.Time `json:"banned_until,omitempty" db:"banned_until"`
	IPAddress   *string    `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// NewBanLog creates an audit entry stamped with the current time.
func NewBanLog(userID, adminUserID int64, action, reason string, bannedUntil *time.Time, ip string) *BanLog {
	entry := &BanLog{
		UserID:      userID,
		AdminUserID: adminUserID,
		Action:      action,
		Reason:      reason,
		BannedUntil: bannedUntil,
		CreatedAt:   time.Now(),
	}
	if ip != "" {
		entry.IPAddress = &ip
	}
	return entry
}

// TableName returns the database table name for the BanLog model.
func (b *BanLog) TableName() string {
	return constants.TableBanLogs
}

// IsBanAction reports whether the entry records a ban, manual or automatic.
func (b *BanLog) IsBanAction() bool {
	return b.Action == constants.BanActionBanned || b.Action == constants.BanActionAutoBanned
}

// IsAutomatic reports whether the ban was applied by the auto-ban evaluator.
func (b *BanLog) IsAutomatic() bool {
	return b.Action == constants.BanActionAutoBanned
}

// IsTemporary reports whether the entry records a ban with an end time.
func (b *BanLog) IsTemporary() bool {
	return b.IsBanAction() && b.BannedUntil != nil
}

// ActionLabel returns a human readable action name.
func (b *BanLog) ActionLabel() string {
	switch b.Action {
	case constants.BanActionBanned:
		return "Banned manually"
	case constants.BanActionUnbanned:
		return "Unbanned"
	case constants.BanActionAutoBanned:
		return "Banned automatically"
	default:
		return b.Action
	}
}

// DurationDescription describes how long the recorded ban lasts relative to now.
func (b *BanLog) DurationDescription(now time.Time) string {
	if !b.IsBanAction() {
		return "N/A"
	}
	if b.BannedUntil == nil {
		return "Permanent"
	}
	if b.BannedUntil.After(now) {
		return "Until " + b.BannedUntil.Format(banLogTimeLayout)
	}
	return "Expired " + b.BannedUntil.Format(banLogTimeLayout)
}

// BanLogView is a BanLog enriched with its display fields for API responses.
type BanLogView struct {
	*BanLog
	ActionLabel         string `json:"action_label"`
	DurationDescription string `json:"duration_description"`
}

// View builds the API representation of the entry.
func (b *BanLog) View(now time.Time) *BanLogView {
	return &BanLogView{
		BanLog:              b,
		ActionLabel:         b.ActionLabel(),
		DurationDescription: b.DurationDescription(now),
	}
}

// BanLogFilter narrows the admin ban log listing.
type BanLogFilter struct {
	Action  string
	UserID  int64
	AdminID int64
}

// BanRequest is the admin payload for banning an account. A nil Until
// makes the ban permanent.
type BanRequest struct {
	Reason string     `json:"reason" validate:"required,min=3,max=1000"`
	Until  *time.Time `json:"until,omitempty"`
}

// BanStatus is the derived ban state of an account.
type BanStatus struct {
	Status string     `json:"status"`
	Reason string     `json:"reason,omitempty"`
	Until  *time.Time `json:"until,omitempty"`
}

// IsBanned reports whether the status is one of the banned states.
func (s BanStatus) IsBanned() bool {
	return s.Status != constants.BanStatusActive
}
