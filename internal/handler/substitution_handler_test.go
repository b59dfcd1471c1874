package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/middleware"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

type substitutionServiceMock struct {
	summary       *dto.AllocationSummary
	allocateErr   error
	assignments   []models.Substitution
	unfilled      []models.UnfilledVacancy
	lastTeacherID string
	lastDate      time.Time
}

func (m *substitutionServiceMock) Allocate(ctx context.Context, schoolID string, date time.Time) (*dto.AllocationSummary, error) {
	m.lastDate = date
	return m.summary, m.allocateErr
}

func (m *substitutionServiceMock) GetAssignments(ctx context.Context, schoolID, teacherID string, date time.Time) ([]models.Substitution, error) {
	m.lastTeacherID = teacherID
	return m.assignments, nil
}

func (m *substitutionServiceMock) GetUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error) {
	return m.unfilled, nil
}

type reportServiceMock struct {
	payload     []byte
	contentType string
	err         error
	lastFormat  string
}

func (m *reportServiceMock) CoverageReport(ctx context.Context, schoolID string, date time.Time, format string) ([]byte, string, error) {
	m.lastFormat = format
	return m.payload, m.contentType, m.err
}

func TestSubstitutionHandlerAllocate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &substitutionServiceMock{summary: &dto.AllocationSummary{Date: "2026-09-01"}}
	handler := NewSubstitutionHandler(mockSvc, &reportServiceMock{})

	payload, _ := json.Marshal(dto.AllocateRequest{Date: "2026-09-01"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/allocate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c := principalContext(t, w, req)

	handler.Allocate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), mockSvc.lastDate)
}

func TestSubstitutionHandlerAllocateBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubstitutionHandler(&substitutionServiceMock{}, &reportServiceMock{})

	payload, _ := json.Marshal(dto.AllocateRequest{Date: "01-09-2026"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/substitutions/allocate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c := principalContext(t, w, req)

	handler.Allocate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutionHandlerListForcesOwnTeacherScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &substitutionServiceMock{assignments: []models.Substitution{{ID: "sub-1"}}}
	handler := NewSubstitutionHandler(mockSvc, &reportServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/substitutions?date=2026-09-01&teacherId=t-other", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", SchoolID: "sch-1", TeacherID: "t-1", Role: models.UserRoleTeacher})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", mockSvc.lastTeacherID)
}

func TestSubstitutionHandlerUnfilledRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubstitutionHandler(&substitutionServiceMock{}, &reportServiceMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/substitutions/unfilled", nil)
	c := principalContext(t, w, req)

	handler.Unfilled(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutionHandlerReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reports := &reportServiceMock{payload: []byte("Status,Period\n"), contentType: "text/csv"}
	handler := NewSubstitutionHandler(&substitutionServiceMock{}, reports)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/substitutions/report?date=2026-09-01&format=csv", nil)
	c := principalContext(t, w, req)

	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", reports.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "coverage-2026-09-01.csv")
}
