package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
)

type coverageReaderStub struct {
	committed []models.Substitution
	unfilled  []models.UnfilledVacancy
}

func (s *coverageReaderStub) ListBySchoolAndDate(ctx context.Context, schoolID string, date time.Time) ([]models.Substitution, error) {
	return s.committed, nil
}

func (s *coverageReaderStub) ListUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error) {
	return s.unfilled, nil
}

func TestExportServiceCoverageCSV(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	reader := &coverageReaderStub{
		committed: []models.Substitution{{
			PeriodIndex:         2,
			SectionID:           "sec-1",
			OriginalTeacherID:   "t-absent",
			SubstituteTeacherID: "t-1",
			SubjectID:           "math",
			Score:               150,
		}},
		unfilled: []models.UnfilledVacancy{{
			PeriodIndex:       4,
			SectionID:         "sec-1",
			OriginalTeacherID: "t-absent",
			SubjectID:         "math",
			Reason:            "NO_ELIGIBLE_CANDIDATE",
		}},
	}
	svc := NewExportService(reader, true, nil)

	payload, contentType, err := svc.CoverageReport(context.Background(), "sch-1", date, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	assert.Contains(t, body, "Status,Period,Section,Original Teacher,Substitute,Subject,Score,Notified,Reason")
	assert.Contains(t, body, "COVERED,2,sec-1,t-absent,t-1,math,150")
	assert.Contains(t, body, "UNFILLED,4,sec-1,t-absent,,math")
	assert.Contains(t, body, "NO_ELIGIBLE_CANDIDATE")
}

func TestExportServiceCoveragePDF(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	svc := NewExportService(&coverageReaderStub{}, true, nil)

	payload, contentType, err := svc.CoverageReport(context.Background(), "sch-1", date, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestExportServiceDisabled(t *testing.T) {
	svc := NewExportService(&coverageReaderStub{}, false, nil)

	_, _, err := svc.CoverageReport(context.Background(), "sch-1", time.Now(), "csv")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&coverageReaderStub{}, true, nil)

	_, _, err := svc.CoverageReport(context.Background(), "sch-1", time.Now(), "xlsx")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
