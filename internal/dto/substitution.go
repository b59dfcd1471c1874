package dto

import (
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// AllocateRequest triggers an on-demand allocation run for a school day.
type AllocateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// AllocationSummary reports the outcome of one allocation run.
type AllocationSummary struct {
	Date      string                   `json:"date"`
	Committed []models.Substitution    `json:"committed"`
	Unfilled  []models.UnfilledVacancy `json:"unfilled"`
	// Skipped counts vacancies already covered by earlier runs.
	Skipped int `json:"skipped"`
}

// SubstitutionListQuery captures query params for listing assignments.
type SubstitutionListQuery struct {
	TeacherID string `form:"teacherId"`
	Date      string `form:"date" validate:"required,datetime=2006-01-02"`
}

// CoverageReportQuery selects the day and format of a coverage report.
type CoverageReportQuery struct {
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
