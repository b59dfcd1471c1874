package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/export"
)

type coverageReader interface {
	ListBySchoolAndDate(ctx context.Context, schoolID string, date time.Time) ([]models.Substitution, error)
	ListUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error)
}

// ExportService renders a school day's substitution coverage as CSV or PDF.
type ExportService struct {
	subs    coverageReader
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	enabled bool
	logger  *zap.Logger
}

// NewExportService builds an ExportService.
func NewExportService(subs coverageReader, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		subs:    subs,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		enabled: enabled,
		logger:  logger,
	}
}

var coverageHeaders = []string{"Status", "Period", "Section", "Original Teacher", "Substitute", "Subject", "Score", "Notified", "Reason"}

// CoverageReport renders the report. Format is "csv" or "pdf"; returns the
// payload and its content type.
func (s *ExportService) CoverageReport(ctx context.Context, schoolID string, date time.Time, format string) ([]byte, string, error) {
	if !s.enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "coverage reports are disabled")
	}

	committed, err := s.subs.ListBySchoolAndDate(ctx, schoolID, date)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	unfilled, err := s.subs.ListUnfilled(ctx, schoolID, date)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unfilled vacancies")
	}

	dataset := export.Dataset{Headers: coverageHeaders}
	for _, sub := range committed {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Status":           "COVERED",
			"Period":           strconv.Itoa(sub.PeriodIndex),
			"Section":          sub.SectionID,
			"Original Teacher": sub.OriginalTeacherID,
			"Substitute":       sub.SubstituteTeacherID,
			"Subject":          sub.SubjectID,
			"Score":            strconv.Itoa(sub.Score),
			"Notified":         strconv.FormatBool(sub.IsNotified),
		})
	}
	for _, v := range unfilled {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Status":           "UNFILLED",
			"Period":           strconv.Itoa(v.PeriodIndex),
			"Section":          v.SectionID,
			"Original Teacher": v.OriginalTeacherID,
			"Subject":          v.SubjectID,
			"Reason":           v.Reason,
		})
	}

	switch format {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Substitution coverage %s", date.Format("2006-01-02"))
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
