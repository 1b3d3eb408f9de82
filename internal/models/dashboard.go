package models

// DashboardStats summarizes moderation activity for the admin dashboard.
type DashboardStats struct {
	TotalUsers       int `json:"total_users"`
	BannedUsers      int `json:"banned_users"`
	PendingReports   int `json:"pending_reports"`
	BansThisWeek     int `json:"bans_this_week"`
	AutoBansThisWeek int `json:"auto_bans_this_week"`
	UnbansThisWeek   int `json:"unbans_this_week"`
	ReportsThisWeek  int `json:"reports_this_week"`
}
