package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/middleware"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/service"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// AdminHandler handles the admin console routes
type AdminHandler struct {
	adminService  AdminServiceInterface
	banService    BanServiceInterface
	reportService ReportServiceInterface
}

// NewAdminHandler creates a new AdminHandler.
//
// Parameters:
//   - adminService: Read side of the moderation console
//   - banService: Ban engine for ban and unban actions
//   - reportService: Report review operations
//
// Returns:
//   - A configured AdminHandler
func NewAdminHandler(adminService AdminServiceInterface, banService BanServiceInterface, reportService ReportServiceInterface) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		banService:    banService,
		reportService: reportService,
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.UserFilter{
		Search:   query.Get(constants.QueryParamSearch),
		Provider: query.Get(constants.QueryParamProvider),
	}
	if raw := query.Get(constants.QueryParamBanned); raw != "" {
		banned, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequest(w, "Invalid banned filter", nil)
			return
		}
		filter.Banned = &banned
	}

	page := utils.GetPaginationParams(r)
	users, total, err := h.adminService.ListUsers(r.Context(), filter, page)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, users, page.Page, page.PageSize, total)
}

// GetUser handles GET /api/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := h.adminService.GetUser(r.Context(), id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// BanUser handles POST /api/admin/users/{id}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req models.BanRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	err := h.banService.Ban(r.Context(), id, service.BanCommand{
		Reason:    req.Reason,
		ActorID:   adminID,
		Until:     req.Until,
		IPAddress: middleware.ClientIP(r),
	})
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	log.Info().
		Int64("user_id", id).
		Int64("admin_id", adminID).
		Msg("Account banned from admin console")

	h.writeBanStatus(w, r, id, "User banned")
}

// UnbanUser handles POST /api/admin/users/{id}/unban
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.banService.Unban(r.Context(), id, &adminID, middleware.ClientIP(r)); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	log.Info().
		Int64("user_id", id).
		Int64("admin_id", adminID).
		Msg("Account unbanned from admin console")

	h.writeBanStatus(w, r, id, "User unbanned")
}

// BanStatus handles GET /api/admin/users/{id}/ban-status
func (h *AdminHandler) BanStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	h.writeBanStatus(w, r, id, "")
}

// UserBanLogs handles GET /api/admin/users/{id}/ban-logs
func (h *AdminHandler) UserBanLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	page := utils.GetPaginationParams(r)
	entries, total, err := h.adminService.UserBanLogs(r.Context(), id, page)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, entries, page.Page, page.PageSize, total)
}

// ListBanLogs handles GET /api/admin/ban-logs
func (h *AdminHandler) ListBanLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.BanLogFilter{
		Action: query.Get(constants.QueryParamAction),
	}

	var ok bool
	if filter.UserID, ok = int64Query(w, r, constants.QueryParamUserID); !ok {
		return
	}
	if filter.AdminID, ok = int64Query(w, r, constants.QueryParamAdminID); !ok {
		return
	}

	page := utils.GetPaginationParams(r)
	entries, total, err := h.adminService.ListBanLogs(r.Context(), filter, page)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, entries, page.Page, page.PageSize, total)
}

// ListReports handles GET /api/admin/reports
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.ReportFilter{
		Status: query.Get(constants.QueryParamStatus),
		Reason: query.Get(constants.QueryParamReason),
	}

	var ok bool
	if filter.ReportedUserID, ok = int64Query(w, r, constants.QueryParamUserID); !ok {
		return
	}

	page := utils.GetPaginationParams(r)
	reports, total, err := h.reportService.ListReports(r.Context(), filter, page)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, reports, page.Page, page.PageSize, total)
}

// GetReport handles GET /api/admin/reports/{id}
func (h *AdminHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(r.Context(), id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, report)
}

// TransitionReport handles POST /api/admin/reports/{id}/transition
func (h *AdminHandler) TransitionReport(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req models.ReportTransition
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	report, err := h.reportService.Transition(r.Context(), id, req.Status, adminID, req.AdminNotes)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, report)
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) writeBanStatus(w http.ResponseWriter, r *http.Request, userID int64, message string) {
	status, err := h.banService.Status(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	data := map[string]interface{}{
		"user_id": userID,
		"ban":     status,
	}
	if message == "" {
		utils.JSON(w, http.StatusOK, data)
		return
	}
	utils.JSONWithMessage(w, http.StatusOK, message, data)
}

// idParam reads the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, constants.ParamID), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(w, "Invalid ID", nil)
		return 0, false
	}
	return id, true
}

func int64Query(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		utils.BadRequest(w, "Invalid "+name+" filter", nil)
		return 0, false
	}
	return value, true
}
