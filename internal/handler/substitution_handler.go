package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/response"
)

type substitutionService interface {
	Allocate(ctx context.Context, schoolID string, date time.Time) (*dto.AllocationSummary, error)
	GetAssignments(ctx context.Context, schoolID, teacherID string, date time.Time) ([]models.Substitution, error)
	GetUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error)
}

type reportService interface {
	CoverageReport(ctx context.Context, schoolID string, date time.Time, format string) ([]byte, string, error)
}

// SubstitutionHandler exposes the assignment engine endpoints.
type SubstitutionHandler struct {
	service substitutionService
	reports reportService
}

// NewSubstitutionHandler builds a new handler.
func NewSubstitutionHandler(service substitutionService, reports reportService) *SubstitutionHandler {
	return &SubstitutionHandler{service: service, reports: reports}
}

// Allocate godoc
// @Summary Run substitute allocation for a school day
// @Description Allocates substitutes for every approved leave of the date. Safe to re-run; committed slots are skipped.
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body dto.AllocateRequest true "Allocation payload"
// @Success 200 {object} response.Envelope
// @Router /substitutions/allocate [post]
func (h *SubstitutionHandler) Allocate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	date, err := parseDay(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Allocate(c.Request.Context(), claims.SchoolID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// List godoc
// @Summary List committed assignments for a day
// @Tags Substitutions
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param teacherId query string false "Substitute teacher filter"
// @Success 200 {object} response.Envelope
// @Router /substitutions [get]
func (h *SubstitutionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID := c.Query("teacherId")
	// Teachers only see their own assignments.
	if claims.Role == models.UserRoleTeacher {
		teacherID = claims.TeacherID
	}
	subs, err := h.service.GetAssignments(c.Request.Context(), claims.SchoolID, teacherID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Unfilled godoc
// @Summary List unfilled vacancies for a day
// @Tags Substitutions
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /substitutions/unfilled [get]
func (h *SubstitutionHandler) Unfilled(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	vacancies, err := h.service.GetUnfilled(c.Request.Context(), claims.SchoolID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vacancies, nil)
}

// Report godoc
// @Summary Export a day coverage report
// @Tags Substitutions
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} byte
// @Router /substitutions/report [get]
func (h *SubstitutionHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date, err := parseDay(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.reports.CoverageReport(c.Request.Context(), claims.SchoolID, date, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("coverage-%s.%s", date.Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}
