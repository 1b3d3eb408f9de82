package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/auth"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/middleware"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// ReportHandler handles the routes users file and follow reports through
type ReportHandler struct {
	reportService ReportServiceInterface
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService ReportServiceInterface) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// SubmitReport handles POST /api/reports
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var sub models.ReportSubmission
	if err := utils.DecodeJSON(r, &sub); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	sub.ReporterID = userID
	sub.IPAddress = middleware.ClientIP(r)

	report, err := h.reportService.Submit(r.Context(), &sub)
	if err != nil {
		log.Info().
			Err(err).
			Int64("reporter_id", userID).
			Int64("reported_user_id", sub.ReportedUserID).
			Msg("Report rejected")
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, report)
}

// ListMyReports handles GET /api/reports/mine
func (h *ReportHandler) ListMyReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	page := utils.GetPaginationParams(r)
	reports, total, err := h.reportService.ListReportsByReporter(r.Context(), userID, page)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, reports, page.Page, page.PageSize, total)
}
