package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
)

func TestReport_IsPending(t *testing.T) {
	report := &models.Report{Status: constants.ReportStatusPending}
	assert.True(t, report.IsPending())
	assert.Equal(t, "reports", report.TableName())

	report.Status = constants.ReportStatusDismissed
	assert.False(t, report.IsPending())
}
