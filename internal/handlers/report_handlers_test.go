package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

func TestSubmitReport(t *testing.T) {
	body := `{"reported_user_id":12,"reason":"spam","description":"Posting the same link everywhere"}`

	testCases := []struct {
		name           string
		body           string
		authenticated  bool
		mockSetup      func(*MockReportService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:          "Success",
			body:          body,
			authenticated: true,
			mockSetup: func(m *MockReportService) {
				m.On("Submit", mock.Anything, mock.MatchedBy(func(sub *models.ReportSubmission) bool {
					return sub.ReporterID == 3 &&
						sub.ReportedUserID == 12 &&
						sub.Reason == constants.ReportReasonSpam &&
						sub.IPAddress == "203.0.113.5"
				})).Return(&models.Report{
					ID:             1,
					ReporterID:     3,
					ReportedUserID: 12,
					Reason:         constants.ReportReasonSpam,
					Status:         constants.ReportStatusPending,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:          "Self Report",
			body:          `{"reported_user_id":3,"reason":"spam","description":"Posting the same link everywhere"}`,
			authenticated: true,
			mockSetup: func(m *MockReportService) {
				m.On("Submit", mock.Anything, mock.Anything).Return(nil, utils.NewSelfReportError()).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   constants.CodeSelfReport,
		},
		{
			name:          "Duplicate Within Window",
			body:          body,
			authenticated: true,
			mockSetup: func(m *MockReportService) {
				m.On("Submit", mock.Anything, mock.Anything).Return(nil, utils.NewDuplicateRecentError()).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   constants.CodeDuplicateReport,
		},
		{
			name:           "Reporter Cannot Be Set By Client",
			body:           `{"reporter_id":99,"reported_user_id":12,"reason":"spam","description":"Posting the same link everywhere"}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   constants.CodeValidationError,
		},
		{
			name:           "Unauthorized",
			body:           body,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockReportService)
			if tc.mockSetup != nil {
				tc.mockSetup(mockService)
			}
			handler := NewReportHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, constants.ReportsBasePath, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req.RemoteAddr = "203.0.113.5:40000"
			if tc.authenticated {
				req = withUser(req, 3)
			}
			rr := httptest.NewRecorder()

			handler.SubmitReport(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedCode != "" {
				response := decodeResponse(t, rr.Body.Bytes())
				require.NotNil(t, response.Error)
				assert.Equal(t, tc.expectedCode, response.Error.Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestListMyReports(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService)

	reports := []*models.Report{
		{ID: 2, ReporterID: 3, ReportedUserID: 12, Reason: constants.ReportReasonSpam, Status: constants.ReportStatusPending},
		{ID: 1, ReporterID: 3, ReportedUserID: 14, Reason: constants.ReportReasonOther, Status: constants.ReportStatusDismissed},
	}
	mockService.On("ListReportsByReporter", mock.Anything, int64(3), utils.PaginationParams{Page: 2, PageSize: 2}).
		Return(reports, 5, nil).Once()

	req := withUser(httptest.NewRequest(http.MethodGet, constants.ReportsMinePath+"?page=2&page_size=2", nil), 3)
	rr := httptest.NewRecorder()

	handler.ListMyReports(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	response := decodeResponse(t, rr.Body.Bytes())
	require.NotNil(t, response.Meta)
	assert.Equal(t, 2, response.Meta.Page)
	assert.Equal(t, 5, response.Meta.TotalItems)
	assert.Equal(t, 3, response.Meta.TotalPages)

	var data []models.Report
	decodeData(t, rr.Body.Bytes(), &data)
	require.Len(t, data, 2)
	assert.Equal(t, int64(2), data[0].ID)
	mockService.AssertExpectations(t)

	mockService.On("ListReportsByReporter", mock.Anything, int64(3), mock.Anything).
		Return(nil, 0, errors.New("connection reset")).Once()
	rr = httptest.NewRecorder()
	handler.ListMyReports(rr, withUser(httptest.NewRequest(http.MethodGet, constants.ReportsMinePath, nil), 3))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
